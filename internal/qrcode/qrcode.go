// Package qrcode builds student QR payloads and renders them as PNG images.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	goqr "github.com/skip2/go-qrcode"
)

// Payload is the content of a generated student code. The scanner reads the
// studentId/studentName aliases back as a structured payload.
type Payload struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Timestamp   int64  `json:"timestamp"`
}

// Student is one roster entry.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SampleRoster stands in for an uploaded class list.
var SampleRoster = []Student{
	{ID: "HU001", Name: "Abebe Kebede"},
	{ID: "HU002", Name: "Almaz Tadesse"},
	{ID: "HU003", Name: "Dawit Haile"},
}

// Options control image rendering. Size is the image edge in pixels and
// Margin the quiet zone width in modules.
type Options struct {
	Size       int
	Margin     int
	Foreground string
	Background string
}

// Code is a generated code ready for display, download or sharing.
type Code struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Data        string `json:"data"`
	DataURI     string `json:"data_uri"`
	PNG         []byte `json:"-"`
}

var ErrMissingStudent = errors.New("student name and id are required")

// Generator renders student codes with fixed options.
type Generator struct {
	opts Options
	now  func() time.Time
}

// NewGenerator validates opts and returns a generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.Foreground == "" {
		opts.Foreground = "#000000"
	}
	if opts.Background == "" {
		opts.Background = "#FFFFFF"
	}
	if _, err := parseHex(opts.Foreground); err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	if _, err := parseHex(opts.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	return &Generator{opts: opts, now: time.Now}, nil
}

// Student generates the code for one student.
func (g *Generator) Student(id, name string) (Code, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" || name == "" {
		return Code{}, ErrMissingStudent
	}
	data, err := json.Marshal(Payload{StudentID: id, StudentName: name, Timestamp: g.now().UnixMilli()})
	if err != nil {
		return Code{}, err
	}
	png, err := g.Encode(string(data))
	if err != nil {
		return Code{}, err
	}
	return Code{
		StudentID:   id,
		StudentName: name,
		Data:        string(data),
		DataURI:     DataURI(png),
		PNG:         png,
	}, nil
}

// Batch generates codes for every roster entry, in order.
func (g *Generator) Batch(roster []Student) ([]Code, error) {
	codes := make([]Code, 0, len(roster))
	for _, s := range roster {
		c, err := g.Student(s.ID, s.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.ID, err)
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// Encode renders text as a Size x Size PNG with a quiet zone of Margin
// modules on each side. The code is centred when Size is not a multiple of
// the module count.
func (g *Generator) Encode(text string) ([]byte, error) {
	q, err := goqr.New(text, goqr.Medium)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	bits := q.Bitmap()

	margin := g.opts.Margin
	if margin < 0 {
		margin = 0
	}
	modules := len(bits) + 2*margin
	size := g.opts.Size
	if size < modules {
		size = modules
	}
	scale := size / modules
	offset := (size-modules*scale)/2 + margin*scale

	fg, _ := parseHex(g.opts.Foreground)
	bg, _ := parseHex(g.opts.Background)
	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{bg, fg})
	for y, row := range bits {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0, y0 := offset+x*scale, offset+y*scale
			for py := y0; py < y0+scale; py++ {
				for px := x0; px < x0+scale; px++ {
					img.SetColorIndex(px, py, 1)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI wraps a PNG as a data: URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("bad color %q", s)
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("bad color %q", s)
		}
		r, g, b = r*17, g*17, b*17
	default:
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
