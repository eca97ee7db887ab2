package docs

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/etnz/cadobr/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in the readme can be loaded, and every file is listed.
	index, err := Index()
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	listed := make(map[string]bool)
	for _, entry := range index {
		listed[entry[0]] = true
		if _, err := GetTopic(entry[0]); err != nil {
			t.Errorf("failed to get topic %q: %v", entry[0], err)
		}
		if entry[1] == "" {
			t.Errorf("topic %q has no description in readme.md", entry[0])
		}
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatalf("failed to glob *.md: %v", err)
	}
	for _, file := range files {
		base := strings.TrimSuffix(file, ".md")
		if base != readme && !listed[base] {
			t.Errorf("topic %q is not listed in readme.md", base)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(index) {
		t.Errorf("got %d topics, readme lists %d", len(all), len(index))
	}
}

func TestGetTopicStar(t *testing.T) {
	got, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, heading := range []string{"# Pipeline", "# Dataset", "# Configuration", "# Monetary"} {
		if !strings.Contains(got, heading) {
			t.Errorf("GetTopic(\"*\") does not contain %q", heading)
		}
	}
	if _, err := GetTopic("nope"); err == nil {
		t.Errorf("GetTopic(\"nope\"): want an error")
	}
}

// parse returns the markdown tree of a topic and its source.
func parse(t *testing.T, topic string) (ast.Node, []byte) {
	t.Helper()
	content, err := GetTopic(topic)
	if err != nil {
		t.Fatal(err)
	}
	source := []byte(content)
	return goldmark.DefaultParser().Parse(text.NewReader(source)), source
}

func TestHeadings(t *testing.T) {
	topics, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range append(topics, readme) {
		root, _ := parse(t, topic)
		var titles int
		ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
				titles++
			}
			return ast.WalkContinue, nil
		})
		if titles != 1 {
			t.Errorf("topic %q has %d level 1 headings, want 1", topic, titles)
		}
		if h, ok := root.FirstChild().(*ast.Heading); !ok || h.Level != 1 {
			t.Errorf("topic %q must start with its title", topic)
		}
	}
}

func TestConfigurationExample(t *testing.T) {
	// The documented file is the default configuration.
	root, source := parse(t, "configuration")
	var blocks []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || !entering || string(fcb.Language(source)) != "toml" {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(source))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	if len(blocks) != 1 {
		t.Fatalf("got %d toml blocks, want 1", len(blocks))
	}
	got, err := config.Parse(strings.NewReader(blocks[0]))
	if err != nil {
		t.Fatalf("documented configuration does not parse: %v", err)
	}
	if want := config.Default(); !reflect.DeepEqual(got, want) {
		t.Errorf("documented configuration = %+v, want %+v", got, want)
	}
}
