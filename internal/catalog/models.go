package catalog

// Question is one item of a test series. Options/Correct are only set for
// type "mcq"; Guidelines/Hint are optional free text.
type Question struct {
	Index      int      `json:"index"`
	Type       string   `json:"type"` // mcq|desc
	Text       string   `json:"text"`
	Options    *Options `json:"options,omitempty"`
	Correct    string   `json:"correct,omitempty"` // option letter a-d
	Guidelines string   `json:"guidelines,omitempty"`
	Hint       string   `json:"hint,omitempty"`
}

type Options struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Option returns the text of the option for an a-d letter, "" otherwise.
func (o *Options) Option(letter string) string {
	if o == nil {
		return ""
	}
	switch letter {
	case "a", "A":
		return o.A
	case "b", "B":
		return o.B
	case "c", "C":
		return o.C
	case "d", "D":
		return o.D
	}
	return ""
}

type Test struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Image       string     `json:"image"`
	Questions   []Question `json:"questions"`
}

// Course keeps the legacy wire field names the frontend expects.
type Course struct {
	ID       int64    `json:"id"`
	Name     string   `json:"coursename"`
	Pic      string   `json:"coursepic"`
	Desc     string   `json:"coursedesc"`
	Duration string   `json:"duration"`
	Videos   []string `json:"coursevids"`
	Price    float64  `json:"price"`
}
