package indicator

// Node is a read-only element of a parsed quote page.
type Node interface {
	// Text is the whitespace-collapsed text of the node and its descendants.
	Text() string
	// OwnText is the whitespace-collapsed text of the node's direct text children only.
	OwnText() string
	Attr(name string) (string, bool)
	Parent() (Node, bool)
	Children() []Node
	// NextSibling returns the next element sibling.
	NextSibling() (Node, bool)
	Select(selector string) []Node
	SelectFirst(selector string) (Node, bool)
}

// Document is the query capability the extractor needs from a parsed page.
type Document interface {
	Select(selector string) []Node
	SelectFirst(selector string) (Node, bool)
	// Nodes returns every element in document order.
	Nodes() []Node
}
