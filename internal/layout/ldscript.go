package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// scriptData is the rendering context handed to linker script templates.
// Templates address their own image as .Self and the whole firmware as
// .Layout; missing regions render as the zero Region so a dummy layout
// still produces a loadable script.
type scriptData struct {
	Name   string
	Self   Region
	Layout *Layout
}

var scriptFuncs = template.FuncMap{
	"hex": func(v uint32) string { return fmt.Sprintf("0x%08x", v) },
}

// RenderScript renders the linker script template for one image against a
// layout and writes the result to out.
func RenderScript(templatePath string, l *Layout, name, out string) error {
	tmpl, err := template.New(filepath.Base(templatePath)).Funcs(scriptFuncs).ParseFiles(templatePath)
	if err != nil {
		return fmt.Errorf("parse linker script template: %w", err)
	}

	self, _ := l.Region(name)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, scriptData{Name: name, Self: self, Layout: l}); err != nil {
		f.Close()
		os.Remove(out)
		return fmt.Errorf("render linker script for %s: %w", name, err)
	}
	return f.Close()
}
