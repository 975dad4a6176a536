package main

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer counts tokens for the document summary. Implementations wrap a
// concrete tokenizer library.
type Tokenizer interface {
	CountTokens(text string) int
	Close()
}

const (
	defaultTiktokenModel = "gpt-4o"
	defaultHFModel       = "gpt2"
)

// NewTokenizer builds a tokenizer of the given kind ("tiktoken" or
// "huggingface"). model selects the encoding; file loads a local HuggingFace
// tokenizer.json instead of fetching one.
func NewTokenizer(kind, model, file string, rep Reporter) (Tokenizer, error) {
	if rep == nil {
		rep = nopReporter{}
	}
	switch strings.ToLower(kind) {
	case "tiktoken":
		return newTiktoken(model, rep)
	case "huggingface":
		return newHuggingFace(model, file)
	default:
		return nil, fmt.Errorf("unsupported tokenizer type %q (use 'tiktoken' or 'huggingface')", kind)
	}
}

type tiktokenCounter struct {
	ttk *tiktoken.Tiktoken
}

func (c *tiktokenCounter) CountTokens(text string) int {
	if c.ttk == nil {
		return 0
	}
	return len(c.ttk.EncodeOrdinary(text))
}

func (c *tiktokenCounter) Close() {}

func newTiktoken(model string, rep Reporter) (Tokenizer, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	ttk, err := tiktoken.EncodingForModel(model)
	if err != nil {
		rep.Warnf("tiktoken model %q not found, falling back to %s: %v", model, defaultTiktokenModel, err)
		ttk, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("loading tiktoken encoding for %s: %w", defaultTiktokenModel, err)
		}
	}
	return &tiktokenCounter{ttk: ttk}, nil
}

type hfCounter struct {
	htk *hf.Tokenizer
}

func (c *hfCounter) CountTokens(text string) int {
	if c.htk == nil {
		return 0
	}
	en, err := c.htk.EncodeSingle(text)
	if err != nil {
		return 0
	}
	return len(en.Tokens)
}

func (c *hfCounter) Close() {}

func newHuggingFace(model, file string) (Tokenizer, error) {
	if file != "" {
		htk, err := pretrained.FromFile(file)
		if err != nil {
			return nil, fmt.Errorf("loading tokenizer from %s: %w", file, err)
		}
		return &hfCounter{htk: htk}, nil
	}

	if model == "" {
		model = defaultHFModel
	}
	path, err := hf.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("resolving tokenizer for model %s: %w", model, err)
	}
	htk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading pretrained tokenizer for model %s: %w", model, err)
	}
	return &hfCounter{htk: htk}, nil
}
