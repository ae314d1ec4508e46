package markdown

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagemark/model"
)

type frontMatter struct {
	Title    string `yaml:"title,omitempty"`
	Author   string `yaml:"author,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	Keywords string `yaml:"keywords,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Pages    int    `yaml:"pages,omitempty"`
}

// FrontMatter returns a YAML front matter block describing the document,
// terminated by a blank line
func FrontMatter(doc *model.Document) (string, error) {
	fm := frontMatter{
		Title:    doc.Metadata.Title,
		Author:   doc.Metadata.Author,
		Subject:  doc.Metadata.Subject,
		Keywords: doc.Metadata.Keywords,
		Source:   doc.Name,
		Pages:    doc.PageCount(),
	}
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("front matter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n", nil
}
