// Package geometry recovers node bounding boxes from a Graphviz SVG.
package geometry

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Map associates a node title with its bounding box.
type Map map[string]schema.Rect

// MarshalJSON wraps the boxes as {"bboxes": {...}}.
func (m Map) MarshalJSON() ([]byte, error) {
	boxes := map[string]schema.Rect(m)
	if boxes == nil {
		boxes = map[string]schema.Rect{}
	}
	return json.Marshal(struct {
		BBoxes map[string]schema.Rect `json:"bboxes"`
	}{boxes})
}

// UnmarshalJSON reads the {"bboxes": {...}} form.
func (m *Map) UnmarshalJSON(b []byte) error {
	var v struct {
		BBoxes map[string]schema.Rect `json:"bboxes"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Map(v.BBoxes)
	return nil
}

// Hit returns the name of the node whose box contains the point. When
// boxes overlap the smallest one wins, then the lowest name.
func (m Map) Hit(x, y float64) (string, bool) {
	best, bestArea := "", 0.0
	for name, r := range m {
		if !r.Contains(x, y) {
			continue
		}
		area := r.W * r.H
		if best == "" || area < bestArea || (area == bestArea && name < best) {
			best, bestArea = name, area
		}
	}
	return best, best != ""
}

type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// find returns the first descendant named local, depth first.
func (e *element) find(local string) *element {
	for i := range e.Children {
		c := &e.Children[i]
		if c.XMLName.Local == local {
			return c
		}
		if f := c.find(local); f != nil {
			return f
		}
	}
	return nil
}

// Extract reads an SVG document. Unreadable or malformed input yields an
// empty map; nodes without a title or usable shape are left out.
func Extract(r io.Reader) Map {
	out := Map{}
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	var root element
	if err := dec.Decode(&root); err != nil {
		return out
	}
	collect(&root, out)
	return out
}

// ExtractFile is Extract on the named file.
func ExtractFile(path string) Map {
	f, err := os.Open(path)
	if err != nil {
		return Map{}
	}
	defer f.Close()
	return Extract(f)
}

func collect(e *element, out Map) {
	for i := range e.Children {
		c := &e.Children[i]
		if c.XMLName.Local == "g" && isNodeGroup(c) {
			if name, r, ok := nodeBox(c); ok {
				out[name] = r
			}
		}
		collect(c, out)
	}
}

func isNodeGroup(g *element) bool {
	class, _ := g.attr("class")
	return strings.Contains(class, "node")
}

func nodeBox(g *element) (string, schema.Rect, bool) {
	var name string
	for i := range g.Children {
		if g.Children[i].XMLName.Local == "title" {
			name = strings.TrimSpace(g.Children[i].Text)
			break
		}
	}
	if name == "" {
		return "", schema.Rect{}, false
	}
	if ell := g.find("ellipse"); ell != nil {
		if r, ok := ellipseBox(ell); ok {
			return name, r, true
		}
	}
	if poly := g.find("polygon"); poly != nil {
		if r, ok := polygonBox(poly); ok {
			return name, r, true
		}
	}
	return "", schema.Rect{}, false
}

func ellipseBox(e *element) (schema.Rect, bool) {
	var v [4]float64
	for i, k := range []string{"cx", "cy", "rx", "ry"} {
		s, ok := e.attr(k)
		if !ok {
			return schema.Rect{}, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return schema.Rect{}, false
		}
		v[i] = f
	}
	cx, cy, rx, ry := v[0], v[1], v[2], v[3]
	return schema.Rect{X: cx - rx, Y: cy - ry, W: 2 * rx, H: 2 * ry}, true
}

func polygonBox(e *element) (schema.Rect, bool) {
	points, ok := e.attr("points")
	if !ok {
		return schema.Rect{}, false
	}
	var minX, minY, maxX, maxY float64
	n := 0
	for _, p := range strings.Fields(points) {
		xs, ys, ok := strings.Cut(p, ",")
		if !ok {
			continue
		}
		x, err1 := strconv.ParseFloat(xs, 64)
		y, err2 := strconv.ParseFloat(ys, 64)
		if err1 != nil || err2 != nil {
			return schema.Rect{}, false
		}
		if n == 0 {
			minX, maxX, minY, maxY = x, x, y, y
		} else {
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
		n++
	}
	if n == 0 {
		return schema.Rect{}, false
	}
	return schema.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}
