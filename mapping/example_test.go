package mapping_test

import (
	"fmt"

	"github.com/lvillar/formfill/mapping"
)

func ExampleNormalize() {
	legacy := []byte(`{
		"fields": {"applicant": {"source": ["name"], "p": 1, "x": "120", "y": 310}},
		"vmap": {"gender:male": {"p": 1, "x": 80, "y": 400}},
		"lines": [{"p": 2, "x1": 10, "y1": 20, "x2": 200, "y2": 20}]
	}`)

	doc, err := mapping.Normalize(legacy)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	name := doc.Text["name"][0]
	fmt.Printf("text name: page %d at (%g, %g) size %g font %s\n", name.Page, name.X, name.Y, name.Size, name.Font)
	male := doc.Checkbox["gender.male"][0]
	fmt.Printf("checkbox gender.male: char %s size %g\n", male.Char, male.Size)
	fmt.Printf("line: page %d width %g\n", doc.Lines[0].Page, doc.Lines[0].Width)
	fmt.Printf("meta: %s %s %s\n", doc.Meta.PDFPath, doc.Meta.Units, doc.Meta.YOrigin)

	// Output:
	// text name: page 1 at (120, 310) size 10 font embedded
	// checkbox gender.male: char V size 12
	// line: page 2 width 1
	// meta: template.pdf px top
}
