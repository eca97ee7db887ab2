// Package docs embeds the user documentation shown by the topic command.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// readme is the topic shown when none is asked for. It lists the others.
const readme = "readme"

// GetTopic returns the content of a documentation topic.
// The topic "*" stands for every topic.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		topics, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(topics...)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of several topics, each followed by a blank line.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns the sorted names of all topics but the readme.
func GetAllTopics() ([]string, error) {
	entries, err := fs.ReadDir(docs, ".")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		if base := strings.TrimSuffix(e.Name(), ".md"); base != readme {
			topics = append(topics, base)
		}
	}
	slices.Sort(topics)
	return topics, nil
}

// indexLine matches a "* topic: description" line of the readme.
var indexLine = regexp.MustCompile(`^\*\s+([^:` + "`" + `]+):\s*(.*)$`)

// Index returns the topics listed in the readme with their description, in readme order.
func Index() ([][2]string, error) {
	content, err := docs.ReadFile(readme + ".md")
	if err != nil {
		return nil, err
	}
	var index [][2]string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := indexLine.FindStringSubmatch(scanner.Text()); m != nil {
			index = append(index, [2]string{strings.TrimSpace(m[1]), m[2]})
		}
	}
	return index, scanner.Err()
}
