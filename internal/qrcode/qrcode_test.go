package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	goqr "github.com/skip2/go-qrcode"

	"qrattend/internal/scan"
)

func TestGenerator(t *testing.T) {
	g, err := NewGenerator(Options{Size: 128, Margin: 2, Foreground: "#1a237e", Background: "fff"})
	if err != nil {
		t.Fatal(err)
	}
	g.now = func() time.Time { return time.UnixMilli(1726131300000) }

	t.Run("student code reads back as a structured payload", func(t *testing.T) {
		code, err := g.Student(" HU001 ", "Abebe Kebede")
		if err != nil {
			t.Fatal(err)
		}
		want := `{"studentId":"HU001","studentName":"Abebe Kebede","timestamp":1726131300000}`
		if code.Data != want {
			t.Errorf("(actual, expected) = (%s, %s)", code.Data, want)
		}

		c := scan.Parse(code.Data)
		if c.Kind != scan.Structured || c.StudentID != "HU001" || c.Name != "Abebe Kebede" {
			t.Errorf("parsed: %+v", c)
		}
	})

	t.Run("png and data uri agree", func(t *testing.T) {
		code, err := g.Student("HU002", "Almaz Tadesse")
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(bytes.NewReader(code.PNG))
		if err != nil {
			t.Fatalf("not a png: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 128 {
			t.Errorf("size: %v", b)
		}
		const prefix = "data:image/png;base64,"
		if !strings.HasPrefix(code.DataURI, prefix) {
			t.Fatalf("data uri: %.40s", code.DataURI)
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(code.DataURI, prefix))
		if err != nil || !bytes.Equal(raw, code.PNG) {
			t.Errorf("data uri does not carry the png: %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		for _, s := range []Student{{ID: "", Name: "x"}, {ID: "x", Name: " "}} {
			if _, err := g.Student(s.ID, s.Name); !errors.Is(err, ErrMissingStudent) {
				t.Errorf("%+v: %v", s, err)
			}
		}
	})

	t.Run("batch keeps roster order", func(t *testing.T) {
		codes, err := g.Batch(SampleRoster)
		if err != nil {
			t.Fatal(err)
		}
		if len(codes) != len(SampleRoster) {
			t.Fatalf("codes: %d", len(codes))
		}
		for i, c := range codes {
			if c.StudentID != SampleRoster[i].ID || c.StudentName != SampleRoster[i].Name {
				t.Errorf("code %d: %+v", i, c)
			}
		}
	})
}

func TestEncodeMargin(t *testing.T) {
	const text = "HU001"
	q, err := goqr.New(text, goqr.Medium)
	if err != nil {
		t.Fatal(err)
	}
	q.DisableBorder = true
	modules := len(q.Bitmap())
	const scale = 4

	dark := func(r, g, b, _ uint32) bool { return r == 0 && g == 0 && b == 0 }

	for name, margin := range map[string]int{"no quiet zone": 0, "one module": 1, "four modules": 4, "wide": 10} {
		t.Run(name, func(t *testing.T) {
			size := (modules + 2*margin) * scale
			g, err := NewGenerator(Options{Size: size, Margin: margin})
			if err != nil {
				t.Fatal(err)
			}
			data, err := g.Encode(text)
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
				t.Fatalf("(actual, expected) = (%v, %d)", b, size)
			}

			// the finder pattern's top-left module starts right after the quiet zone
			edge := margin * scale
			if !dark(img.At(edge, edge).RGBA()) {
				t.Errorf("pixel (%d, %d) should be dark", edge, edge)
			}
			for i := 0; i < edge; i++ {
				if dark(img.At(i, edge).RGBA()) || dark(img.At(edge, i).RGBA()) {
					t.Errorf("quiet zone pixel %d is dark", i)
					break
				}
			}
		})
	}
}

func TestNewGeneratorColors(t *testing.T) {
	if _, err := NewGenerator(Options{Foreground: "#12"}); err == nil {
		t.Error("expected error for short color")
	}
	if _, err := NewGenerator(Options{Background: "purple"}); err == nil {
		t.Error("expected error for named color")
	}
	g, err := NewGenerator(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.opts.Size != 256 {
		t.Errorf("default size: %d", g.opts.Size)
	}
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#1a237e")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0x1a || c.G != 0x23 || c.B != 0x7e || c.A != 0xff {
		t.Errorf("got %+v", c)
	}
	c, err = parseHex("f0a")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0xff || c.G != 0x00 || c.B != 0xaa {
		t.Errorf("short form: %+v", c)
	}
}
