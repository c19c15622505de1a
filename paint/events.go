package paint

// Kind names the operation an Event records.
type Kind string

const (
	KindSetSize         Kind = "setSize"
	KindRegisterFont    Kind = "registerFont"
	KindClear           Kind = "clear"
	KindFillRectangle   Kind = "fillRectangle"
	KindStrokeRectangle Kind = "strokeRectangle"
	KindFillText        Kind = "fillText"
	KindDrawImage       Kind = "drawImage"
	KindSetFillStyle    Kind = "setFillStyle"
	KindSetStrokeStyle  Kind = "setStrokeStyle"
	KindSetLineWidth    Kind = "setLineWidth"
	KindSetFontFamily   Kind = "setFontFamily"
	KindSetFontSize     Kind = "setFontSize"
	KindExport          Kind = "export"
)

// Event is an immutable record of one issued builder or painter call.
// Optional arguments are pointers: nil means the caller omitted them.
type Event interface {
	Kind() Kind
}

type SetSizeEvent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RegisterFontEvent struct {
	Path  string `json:"path"`
	Style Font   `json:"style"`
}

// ClearEvent is only logged by mock painters; the real painter logs a clear
// as the FillRectangleEvent it performs.
type ClearEvent struct {
	Style Style `json:"style"`
}

type FillRectangleEvent struct {
	Rect  Rect   `json:"rectangle"`
	Style *Style `json:"style,omitempty"`
}

type StrokeRectangleEvent struct {
	Rect   Rect    `json:"rectangle"`
	Stroke *Stroke `json:"style,omitempty"`
}

type FillTextEvent struct {
	Text string `json:"text"`
	At   Point  `json:"at"`
}

// DrawImageEvent records the resolved image source, not the pending handle.
type DrawImageEvent struct {
	Image  string `json:"image"`
	At     Point  `json:"at"`
	Source *Rect  `json:"source,omitempty"`
}

type SetFillStyleEvent struct {
	Style Style `json:"style"`
}

type SetStrokeStyleEvent struct {
	Style Style `json:"style"`
}

type SetLineWidthEvent struct {
	Width float64 `json:"width"`
}

type SetFontFamilyEvent struct {
	Family string `json:"family"`
}

type SetFontSizeEvent struct {
	Size float64 `json:"size"`
}

type ExportEvent struct {
	To string `json:"to"`
}

func (SetSizeEvent) Kind() Kind         { return KindSetSize }
func (RegisterFontEvent) Kind() Kind    { return KindRegisterFont }
func (ClearEvent) Kind() Kind           { return KindClear }
func (FillRectangleEvent) Kind() Kind   { return KindFillRectangle }
func (StrokeRectangleEvent) Kind() Kind { return KindStrokeRectangle }
func (FillTextEvent) Kind() Kind        { return KindFillText }
func (DrawImageEvent) Kind() Kind       { return KindDrawImage }
func (SetFillStyleEvent) Kind() Kind    { return KindSetFillStyle }
func (SetStrokeStyleEvent) Kind() Kind  { return KindSetStrokeStyle }
func (SetLineWidthEvent) Kind() Kind    { return KindSetLineWidth }
func (SetFontFamilyEvent) Kind() Kind   { return KindSetFontFamily }
func (SetFontSizeEvent) Kind() Kind     { return KindSetFontSize }
func (ExportEvent) Kind() Kind          { return KindExport }
