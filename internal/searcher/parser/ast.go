package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
)

// Node is a parsed query expression. The set of node types is closed.
type Node interface {
	node()
	String() string
}

// Term matches articles containing Text in Field.
type Term struct {
	Field string
	Text  string
}

// Wildcard matches articles containing any Field term that fits Pattern.
type Wildcard struct {
	Field   string
	Pattern string
}

// Phrase matches articles where Terms occur consecutively in Field.
type Phrase struct {
	Field string
	Terms []string
}

// Not matches every article not matched by Operand.
type Not struct {
	Operand Node
}

type And struct {
	Left, Right Node
}

type Or struct {
	Left, Right Node
}

// Group is a parenthesised sub-expression.
type Group struct {
	Inner Node
}

func (*Term) node()     {}
func (*Wildcard) node() {}
func (*Phrase) node()   {}
func (*Not) node()      {}
func (*And) node()      {}
func (*Or) node()       {}
func (*Group) node()    {}

func qualify(field, s string) string {
	if field == "" || field == ingestion.BodyField {
		return s
	}
	return field + ":" + s
}

func (n *Term) String() string     { return qualify(n.Field, n.Text) }
func (n *Wildcard) String() string { return qualify(n.Field, n.Pattern) }
func (n *Phrase) String() string {
	return qualify(n.Field, `"`+strings.Join(n.Terms, " ")+`"`)
}
func (n *Not) String() string   { return "NOT " + n.Operand.String() }
func (n *And) String() string   { return n.Left.String() + " AND " + n.Right.String() }
func (n *Or) String() string    { return n.Left.String() + " OR " + n.Right.String() }
func (n *Group) String() string { return "(" + n.Inner.String() + ")" }
