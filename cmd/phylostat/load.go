package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/joklawitter/algo-phylo/newick"
	"github.com/joklawitter/algo-phylo/nexus"
)

// readText reads a whole file. If the file name ends with ".gz", gzip
// decompression will be used.
func readText(fileName string) (string, error) {
	var reader io.Reader
	f, err := os.Open(fileName)
	if err != nil {
		return "", err
	}
	defer f.Close()
	reader = f

	if path.Ext(fileName) == ".gz" {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return "", err
		}
		defer gz.Close()
		reader = gz
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// isNexus reports whether text starts with a #NEXUS header or a BEGIN
// command; anything else is treated as Newick.
func isNexus(text string) bool {
	head := strings.ToUpper(strings.TrimSpace(text))
	return strings.HasPrefix(head, "#NEXUS") || strings.HasPrefix(head, "BEGIN")
}

// load parses a tree file of either format into a nexus.Sample. Newick
// trees get names from their position in the file.
func load(ctx context.Context, fileName string, opts *options) (*nexus.Sample, error) {
	text, err := readText(fileName)
	if err != nil {
		return nil, err
	}
	if isNexus(text) {
		log.Debugf("Reading %s as NEXUS.", fileName)
		return nexus.ParseOptions(ctx, text, opts.nexus())
	}

	log.Debugf("Reading %s as Newick.", fileName)
	trees, taxa, err := newick.ParseAll(text)
	if err != nil {
		return nil, err
	}
	sample := &nexus.Sample{Taxa: taxa, Trees: make([]nexus.NamedTree, len(trees))}
	for i, tree := range trees {
		sample.Trees[i] = nexus.NamedTree{Name: treeName(i), Tree: tree}
	}
	return sample, nil
}

func treeName(i int) string {
	return "tree_" + strconv.Itoa(i+1)
}
