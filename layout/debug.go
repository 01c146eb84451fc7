package layout

import (
	"encoding/json"
	"os"
)

// NodeSnapshot is the serializable view of a formatted node.
type NodeSnapshot struct {
	Kind     string         `json:"kind"`
	Name     string         `json:"name,omitempty"`
	Text     string         `json:"text,omitempty"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Margin   Edges          `json:"margin"`
	Padding  Edges          `json:"padding"`
	Boundary []Point        `json:"boundary"`
	Children []NodeSnapshot `json:"children,omitempty"`
}

// PageSnapshot adds the page geometry and placeholders.
type PageSnapshot struct {
	Number     int                     `json:"number,omitempty"`
	Size       string                  `json:"size"`
	PageWidth  float64                 `json:"pageWidth"`
	PageHeight float64                 `json:"pageHeight"`
	Body       NodeSnapshot            `json:"body"`
	Slots      map[string]NodeSnapshot `json:"placeholders,omitempty"`
}

// Snapshot captures n and its subtree.
func Snapshot(n *Node) NodeSnapshot {
	s := NodeSnapshot{
		Kind:     n.kind.String(),
		Name:     n.name,
		Text:     n.Text(),
		Width:    n.width,
		Height:   n.height,
		Margin:   n.margin,
		Padding:  n.padding,
		Boundary: n.boundary.Points(),
	}
	for _, c := range n.children {
		s.Children = append(s.Children, Snapshot(c))
	}
	return s
}

// SnapshotPage captures a page, its body and its placeholders.
func SnapshotPage(p *Page) PageSnapshot {
	s := PageSnapshot{
		Size:       p.size,
		PageWidth:  p.pageWidth,
		PageHeight: p.pageHeight,
		Body:       Snapshot(&p.Node),
	}
	if p.ctx != nil {
		s.Number = p.ctx.Number
	}
	for _, name := range []string{PlaceholderHeader, PlaceholderFooter, PlaceholderWatermark} {
		if n := p.Placeholder(name); n != nil {
			if s.Slots == nil {
				s.Slots = map[string]NodeSnapshot{}
			}
			s.Slots[name] = Snapshot(n)
		}
	}
	return s
}

// WriteDebugJSON dumps the laid out boxes of every page as JSON.
func WriteDebugJSON(doc *Document, path string) error {
	if doc == nil {
		return nil
	}
	pages := make([]PageSnapshot, 0, len(doc.pages))
	for _, p := range doc.pages {
		pages = append(pages, SnapshotPage(p))
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
