package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/tutor/pkg/outline"
)

// SnapshotOptions controls static snapshot rendering.
type SnapshotOptions struct {
	// Path is the output file. A missing extension selects SVG and the
	// extension is appended.
	Path string

	// Format overrides the extension: "svg" or "png".
	Format string

	// Title overrides the header text; empty means the outline title.
	Title string
}

// Snapshot geometry. The bitmap font is 7x13, so text truncation
// limits derive from a 7px glyph width.
const (
	snapNodeWidth  = 380
	snapNodeHeight = 34
	snapNodeGap    = 10
	snapIndent     = 28
	snapMarginX    = 40
	snapMarginY    = 28
	snapHeaderH    = 72
	snapLegendH    = 46
	snapMinWidth   = 640
	snapMinHeight  = 480
)

var (
	colorBackground = color.RGBA{R: 0x12, G: 0x14, B: 0x1a, A: 0xff}
	colorText       = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
	colorMuted      = color.RGBA{R: 0x8a, G: 0x91, B: 0x9e, A: 0xff}
	colorConnector  = color.RGBA{R: 0x3a, G: 0x40, B: 0x4d, A: 0xff}
	colorLecture    = color.RGBA{R: 0x2b, G: 0x4f, B: 0x77, A: 0xff}
	colorLesson     = color.RGBA{R: 0x2e, G: 0x6b, B: 0x48, A: 0xff}
	colorLab        = color.RGBA{R: 0x8a, G: 0x5a, B: 0x1f, A: 0xff}
	colorDemo       = color.RGBA{R: 0x5e, G: 0x3d, B: 0x78, A: 0xff}
	colorBorder     = color.RGBA{R: 0x5b, G: 0x63, B: 0x73, A: 0xff}
)

type snapshotNode struct {
	X, Y, W, H int
	Label      string
	Detail     string
	Kind       outline.Kind
}

type segment struct {
	X1, Y1, X2, Y2 int
}

type legendEntry struct {
	Label string
	Color color.RGBA
}

type snapshotLayout struct {
	Width, Height int
	Header        string
	Summary       string
	Nodes         []snapshotNode
	Connectors    []segment
	Legend        []legendEntry
}

// SaveSnapshot renders the outline tree to a static image. The format
// is taken from opts.Format, falling back to the file extension.
func SaveSnapshot(root *outline.Section, opts SnapshotOptions) error {
	if root == nil {
		return fmt.Errorf("no outline to export")
	}
	if strings.TrimSpace(opts.Path) == "" {
		return fmt.Errorf("snapshot path is empty")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch ext := strings.ToLower(filepath.Ext(opts.Path)); ext {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case "":
			format = "svg"
			opts.Path += ".svg"
		default:
			return fmt.Errorf("unsupported snapshot format %q", ext)
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported snapshot format %q", format)
	}

	if dir := filepath.Dir(opts.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	lay := buildLayout(root, opts.Title)
	if format == "png" {
		return renderPNG(opts.Path, lay)
	}
	return renderSVG(opts.Path, lay)
}

// buildLayout places one row per section, indented by tree depth, and
// links each row to its parent with an elbow connector.
func buildLayout(root *outline.Section, title string) snapshotLayout {
	if strings.TrimSpace(title) == "" {
		title = root.Title
	}

	sections := root.Flatten()
	lay := snapshotLayout{
		Header: truncate(title, 64),
		Legend: []legendEntry{
			{Label: "lecture", Color: colorLecture},
			{Label: "lesson", Color: colorLesson},
			{Label: "lab", Color: colorLab},
			{Label: "demo", Color: colorDemo},
		},
	}

	var lectures, lessons, labs, demos, fragments int
	maxDepth := 0
	lastAtDepth := make(map[int]int)

	y := snapHeaderH
	for _, sec := range sections {
		depth := sectionDepth(sec)
		if depth > maxDepth {
			maxDepth = depth
		}

		node := snapshotNode{
			X:     snapMarginX + depth*snapIndent,
			Y:     y,
			W:     snapNodeWidth,
			H:     snapNodeHeight,
			Label: truncate(sec.Label(), 40),
			Kind:  sec.Kind,
		}
		if n := len(sec.Snippets); n > 0 {
			node.Detail = fmt.Sprintf("%d frag", n)
			fragments += n
		}
		lay.Nodes = append(lay.Nodes, node)

		if depth > 0 {
			if pi, ok := lastAtDepth[depth-1]; ok {
				parent := lay.Nodes[pi]
				px := parent.X + 14
				cy := node.Y + node.H/2
				lay.Connectors = append(lay.Connectors,
					segment{px, parent.Y + parent.H, px, cy},
					segment{px, cy, node.X, cy},
				)
			}
		}
		lastAtDepth[depth] = len(lay.Nodes) - 1

		switch sec.Kind {
		case outline.KindLecture:
			lectures++
		case outline.KindLesson:
			lessons++
		case outline.KindLab:
			labs++
		case outline.KindDemo:
			demos++
		}
		y += snapNodeHeight + snapNodeGap
	}

	lay.Summary = fmt.Sprintf("%s: %s, %s, %s, %s, %s",
		countNoun(len(sections), "section"),
		countNoun(lectures, "lecture"),
		countNoun(lessons, "lesson"),
		countNoun(labs, "lab"),
		countNoun(demos, "demo"),
		countNoun(fragments, "fragment"))

	lay.Width = snapMarginX*2 + maxDepth*snapIndent + snapNodeWidth
	if lay.Width < snapMinWidth {
		lay.Width = snapMinWidth
	}
	lay.Height = y + snapLegendH + snapMarginY
	if lay.Height < snapMinHeight {
		lay.Height = snapMinHeight
	}
	return lay
}

func kindFill(k outline.Kind) color.RGBA {
	switch k {
	case outline.KindLecture:
		return colorLecture
	case outline.KindLesson:
		return colorLesson
	case outline.KindLab:
		return colorLab
	case outline.KindDemo:
		return colorDemo
	default:
		return colorConnector
	}
}

func renderSVG(path string, lay snapshotLayout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()
	renderSVGToWriter(f, lay)
	return nil
}

// renderSVGToWriter is split out so tests can render into a buffer.
func renderSVGToWriter(w io.Writer, lay snapshotLayout) {
	const fontStyle = "font-size:13px;font-family:monospace"

	canvas := svg.New(w)
	canvas.Start(lay.Width, lay.Height)
	canvas.Rect(0, 0, lay.Width, lay.Height, "fill:"+css(colorBackground))
	canvas.Text(snapMarginX, 32, lay.Header,
		fmt.Sprintf("fill:%s;font-size:18px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(snapMarginX, 54, lay.Summary,
		fmt.Sprintf("fill:%s;%s", css(colorMuted), fontStyle))

	for _, c := range lay.Connectors {
		canvas.Line(c.X1, c.Y1, c.X2, c.Y2,
			fmt.Sprintf("stroke:%s;stroke-width:1", css(colorConnector)))
	}

	for _, n := range lay.Nodes {
		canvas.Roundrect(n.X, n.Y, n.W, n.H, 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(kindFill(n.Kind)), css(colorBorder)))
		canvas.Text(n.X+12, n.Y+n.H/2+4, n.Label,
			fmt.Sprintf("fill:%s;%s", css(colorText), fontStyle))
		if n.Detail != "" {
			canvas.Text(n.X+n.W-12, n.Y+n.H/2+4, n.Detail,
				fmt.Sprintf("fill:%s;%s;text-anchor:end", css(colorMuted), fontStyle))
		}
	}

	ly := lay.Height - snapMarginY - 14
	lx := snapMarginX
	for _, entry := range lay.Legend {
		canvas.Rect(lx, ly, 12, 12, fmt.Sprintf("fill:%s", css(entry.Color)))
		canvas.Text(lx+18, ly+10, entry.Label,
			fmt.Sprintf("fill:%s;%s", css(colorMuted), fontStyle))
		lx += 18 + 7*len(entry.Label) + 28
	}

	canvas.End()
}

func renderPNG(path string, lay snapshotLayout) error {
	dc := gg.NewContext(lay.Width, lay.Height)
	dc.SetColor(colorBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(lay.Header, snapMarginX, 28, 0, 0.5)
	dc.SetColor(colorMuted)
	dc.DrawStringAnchored(lay.Summary, snapMarginX, 50, 0, 0.5)

	dc.SetColor(colorConnector)
	dc.SetLineWidth(1)
	for _, c := range lay.Connectors {
		dc.DrawLine(float64(c.X1), float64(c.Y1), float64(c.X2), float64(c.Y2))
		dc.Stroke()
	}

	for _, n := range lay.Nodes {
		x, yy := float64(n.X), float64(n.Y)
		w, h := float64(n.W), float64(n.H)
		dc.SetColor(kindFill(n.Kind))
		dc.DrawRoundedRectangle(x, yy, w, h, 6)
		dc.Fill()
		dc.SetColor(colorBorder)
		dc.DrawRoundedRectangle(x, yy, w, h, 6)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.Label, x+12, yy+h/2, 0, 0.5)
		if n.Detail != "" {
			dc.SetColor(colorMuted)
			dc.DrawStringAnchored(n.Detail, x+w-12, yy+h/2, 1, 0.5)
		}
	}

	ly := float64(lay.Height - snapMarginY - 8)
	lx := float64(snapMarginX)
	for _, entry := range lay.Legend {
		dc.SetColor(entry.Color)
		dc.DrawRectangle(lx, ly-6, 12, 12)
		dc.Fill()
		dc.SetColor(colorMuted)
		dc.DrawStringAnchored(entry.Label, lx+18, ly, 0, 0.5)
		lx += 18 + 7*float64(len(entry.Label)) + 28
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis when there is room for one.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
