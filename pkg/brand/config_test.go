package brand

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/errors"
)

func testElement(id string) *Element {
	return &Element{
		ID:        id,
		Type:      TypeLogo,
		SourceURL: "https://cdn.example.com/" + id + ".png",
		Position:  canvas.Point{X: 400, Y: 300},
		Scale:     1.0,
		Opacity:   1.0,
	}
}

func TestConfig_AddPreservesOrder(t *testing.T) {
	cfg := NewConfig()
	for _, id := range []string{"a", "b", "c"} {
		if err := cfg.Add(testElement(id)); err != nil {
			t.Fatalf("Add(%s) error: %v", id, err)
		}
	}

	got := cfg.Elements()
	want := []string{"a", "b", "c"}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("Elements()[%d].ID = %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestConfig_AddRejectsDuplicateID(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Add(testElement("a")); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	err := cfg.Add(testElement("a"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Add(duplicate) error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfig_AddNormalizesRotation(t *testing.T) {
	cfg := NewConfig()
	e := testElement("a")
	e.Rotation = -90
	if err := cfg.Add(e); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if got := cfg.Find("a").Rotation; got != 270 {
		t.Errorf("Rotation = %v, want 270", got)
	}
}

func TestConfig_Remove(t *testing.T) {
	cfg := NewConfig()
	for _, id := range []string{"a", "b", "c"} {
		if err := cfg.Add(testElement(id)); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}

	if !cfg.Remove("b") {
		t.Fatal("Remove(b) = false, want true")
	}
	if cfg.Remove("b") {
		t.Error("second Remove(b) = true, want false")
	}

	got := cfg.Elements()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("after remove: %v elements, want [a c]", len(got))
	}
}

func TestConfig_MoveTo(t *testing.T) {
	cfg := NewConfig()
	for _, id := range []string{"a", "b", "c"} {
		if err := cfg.Add(testElement(id)); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}

	if err := cfg.MoveTo("c", 0); err != nil {
		t.Fatalf("MoveTo error: %v", err)
	}
	got := cfg.Elements()
	want := []string{"c", "a", "b"}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("after MoveTo: [%d] = %s, want %s", i, e.ID, want[i])
		}
	}

	if err := cfg.MoveTo("a", 5); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("MoveTo out of range error = %v, want INVALID_INPUT", err)
	}
	if err := cfg.MoveTo("zzz", 0); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("MoveTo missing id error = %v, want NOT_FOUND", err)
	}
}

func TestConfig_JSONRoundTrip(t *testing.T) {
	cfg := NewConfig()
	e := testElement("a")
	e.Rotation = 45
	e.Scale = 0.5
	e.Opacity = 0.8
	if err := cfg.Add(e); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := cfg.Add(testElement("b")); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back Config
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if back.Len() != 2 {
		t.Fatalf("Len = %d, want 2", back.Len())
	}
	got := back.Find("a")
	if got == nil || got.Rotation != 45 || got.Scale != 0.5 || got.Opacity != 0.8 {
		t.Errorf("round-tripped element = %+v, want original values", got)
	}
	if back.Elements()[0].ID != "a" || back.Elements()[1].ID != "b" {
		t.Error("round trip did not preserve order")
	}
}

func TestConfig_MarshalEmpty(t *testing.T) {
	data, err := json.Marshal(NewConfig())
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Marshal(empty) = %s, want []", data)
	}
}

func TestDecode_DropsMalformedRecords(t *testing.T) {
	payload := `[
		{"id":"good","type":"logo","sourceUrl":"https://cdn.example.com/a.png","position":{"x":10,"y":20},"scale":1,"rotationDeg":0,"opacity":1},
		{"id":"bad-scale","type":"logo","sourceUrl":"https://cdn.example.com/b.png","position":{"x":0,"y":0},"scale":-2,"rotationDeg":0,"opacity":1},
		{"id":"bad-type","type":"sticker","sourceUrl":"https://cdn.example.com/c.png","position":{"x":0,"y":0},"scale":1,"rotationDeg":0,"opacity":1},
		{"id":"also-good","type":"watermark","sourceUrl":"https://cdn.example.com/d.png","position":{"x":5,"y":5},"scale":0.5,"rotationDeg":90,"opacity":0.3}
	]`

	cfg, dropped, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if cfg.Len() != 2 {
		t.Errorf("Len = %d, want 2", cfg.Len())
	}
	if cfg.Find("good") == nil || cfg.Find("also-good") == nil {
		t.Error("valid records missing after lenient decode")
	}
	if len(dropped) != 2 {
		t.Fatalf("dropped %d records, want 2", len(dropped))
	}
	for _, d := range dropped {
		if !errors.Is(d.Reason, errors.ErrCodeInvalidElement) {
			t.Errorf("dropped record %d reason = %v, want INVALID_ELEMENT", d.Index, d.Reason)
		}
	}
}

func TestDecode_NotAnArray(t *testing.T) {
	_, _, err := Decode([]byte(`{"nope":true}`))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Decode(object) error = %v, want INVALID_CONFIG", err)
	}
}

func TestElement_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Element)
		wantOK bool
	}{
		{"valid", func(e *Element) {}, true},
		{"no id", func(e *Element) { e.ID = "" }, false},
		{"bad type", func(e *Element) { e.Type = "gif" }, false},
		{"empty source", func(e *Element) { e.SourceURL = "" }, false},
		{"zero scale", func(e *Element) { e.Scale = 0 }, false},
		{"negative scale", func(e *Element) { e.Scale = -1 }, false},
		{"opacity above one", func(e *Element) { e.Opacity = 1.5 }, false},
		{"opacity below zero", func(e *Element) { e.Opacity = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testElement("x")
			tt.mutate(e)
			err := e.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() error = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}

func TestElement_SetRotationNormalizes(t *testing.T) {
	e := testElement("x")
	for _, tt := range []struct{ in, want float64 }{
		{90, 90}, {370, 10}, {-10, 350}, {720, 0},
	} {
		e.SetRotation(tt.in)
		if e.Rotation != tt.want {
			t.Errorf("SetRotation(%v): Rotation = %v, want %v", tt.in, e.Rotation, tt.want)
		}
	}
}

func TestClampScale(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{
		{0.5, 0.5}, {0.01, MinScale}, {99, MaxScale}, {MinScale, MinScale}, {MaxScale, MaxScale},
	} {
		if got := ClampScale(tt.in); got != tt.want {
			t.Errorf("ClampScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewElement(t *testing.T) {
	e := NewElement(TypeLogo, "https://cdn.example.com/logo.png")
	if e.ID == "" {
		t.Error("NewElement did not assign an id")
	}
	if e.Scale != 1.0 || e.Opacity != 1.0 || e.Rotation != 0 {
		t.Errorf("NewElement transform = %+v, want neutral", e)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("NewElement produced invalid element: %v", err)
	}
}
