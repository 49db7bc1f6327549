package util

import (
	"bytes"
	"strings"
	"text/template"
)

func MergeTemplate(tpl string, model any) ([]byte, error) {

	var funcMap = template.FuncMap{
		"upper": strings.ToUpper,
	}

	tmpl, err := template.New("summary").Funcs(funcMap).Parse(tpl)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer

	err = tmpl.Execute(&output, model)
	if err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}
