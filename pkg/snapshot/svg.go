package snapshot

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/layers"
	"github.com/glazework/glaze/pkg/observability"
)

const xhtmlNS = "http://www.w3.org/1999/xhtml"

// SVGOption configures SVG export.
type SVGOption func(*svgExporter)

type svgExporter struct {
	background string
}

// WithBackground fills the document with a solid color before any
// surface content. The default is a transparent background.
func WithBackground(color string) SVGOption {
	return func(e *svgExporter) { e.background = color }
}

// RenderSVG exports the stack as a standalone SVG document. Every
// surface runs a capture pass first, so the output includes elements
// outside the current viewport.
func RenderSVG(st *layers.Stack, opts ...SVGOption) ([]byte, error) {
	e := svgExporter{}
	for _, opt := range opts {
		opt(&e)
	}

	surfaces := st.Surfaces()
	start := time.Now()
	observability.Export().OnExportStart("svg", len(surfaces))

	st.RenderCapture()

	w, h := st.Size()
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))

	var buf bytes.Buffer
	doc := svg.New(&buf)
	doc.Start(iw, ih)
	if e.background != "" {
		doc.Rect(0, 0, iw, ih, "fill:"+e.background)
	}

	var err error
	for _, s := range surfaces {
		if werr := writeSurface(doc, s, iw, ih); werr != nil && err == nil {
			err = werr
		}
	}
	doc.End()

	observability.Export().OnExportComplete("svg", buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSVG exports the stack to a file at path.
func WriteSVG(st *layers.Stack, path string, opts ...SVGOption) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	out, err := RenderSVG(st, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

func writeSurface(doc *svg.SVG, s layers.Surface, w, h int) error {
	switch cs := s.(type) {
	case *layers.CanvasSurface:
		return writeCanvas(doc, cs, w, h)
	default:
		writeNodeTree(doc, s, w, h)
		return nil
	}
}

// writeCanvas embeds the raster contents as a PNG data URI, scaled back
// to logical size so high-DPI backing stores line up with vector
// surfaces.
func writeCanvas(doc *svg.SVG, cs *layers.CanvasSurface, w, h int) error {
	var raw bytes.Buffer
	if err := png.Encode(&raw, cs.Image()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode canvas raster")
	}
	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw.Bytes())
	doc.Image(0, 0, w, h, href)
	return nil
}

func writeNodeTree(doc *svg.SVG, s layers.Surface, w, h int) {
	root := s.Root()
	if root.Tag() == "svg" {
		// Vector markup nests directly; the root collapses to a group.
		for _, c := range root.Children() {
			writeElement(doc.Writer, c)
		}
		return
	}
	// HTML markup needs a foreignObject wrapper to stay valid SVG.
	fmt.Fprintf(doc.Writer, `<foreignObject x="0" y="0" width="%d" height="%d">`+"\n", w, h)
	writeElement(doc.Writer, root)
	fmt.Fprintln(doc.Writer, `</foreignObject>`)
}

// writeElement serializes a retained element recursively. HTML tags get
// the XHTML namespace so browsers render foreignObject content.
func writeElement(w io.Writer, e *dom.Element) {
	tag := e.Tag()
	fmt.Fprintf(w, "<%s", tag)
	if tag == "div" {
		fmt.Fprintf(w, ` xmlns=%q`, xhtmlNS)
	}
	for _, name := range e.AttrNames() {
		fmt.Fprintf(w, " %s=%q", name, e.Attr(name))
	}
	if t := e.Transform(); t != "" {
		if tag == "div" {
			fmt.Fprintf(w, ` style="transform: %s"`, t)
		} else {
			fmt.Fprintf(w, " transform=%q", t)
		}
	}
	fmt.Fprint(w, ">")
	if txt := e.Text(); txt != "" {
		xml.EscapeText(w, []byte(txt)) //nolint:errcheck
	}
	for _, c := range e.Children() {
		writeElement(w, c)
	}
	fmt.Fprintf(w, "</%s>\n", tag)
}
