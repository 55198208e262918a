package extractor

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/page"
)

// Manifest is the JSON sidecar format listing the links of every page.
//
//	{"pages":[{"index":0,"width":612,"height":792,"links":[
//	  {"action":"navigate","target":"page://3","rect":[10,10,50,30]}]}]}
type Manifest struct {
	Pages []ManifestPage `json:"pages"`
}

type ManifestPage struct {
	Index  int          `json:"index"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Links  []*link.Link `json:"links"`
}

// ReadManifest decodes a manifest. Every link is validated while decoding;
// the first invalid link fails the whole manifest.
func ReadManifest(r io.Reader) ([]*page.Page, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	pages := make([]*page.Page, 0, len(m.Pages))
	for _, mp := range m.Pages {
		pages = append(pages, page.New(mp.Index, page.Size{Width: mp.Width, Height: mp.Height}, mp.Links...))
	}
	return pages, nil
}

// NewManifest snapshots the links of pages.
func NewManifest(pages []*page.Page) Manifest {
	m := Manifest{Pages: make([]ManifestPage, 0, len(pages))}
	for _, p := range pages {
		mp := ManifestPage{Index: p.Index, Width: p.Size.Width, Height: p.Size.Height, Links: []*link.Link{}}
		if p.Links != nil {
			mp.Links = p.Links.Links()
		}
		m.Pages = append(m.Pages, mp)
	}
	return m
}

// WriteManifest encodes pages as an indented manifest.
func WriteManifest(w io.Writer, pages []*page.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewManifest(pages)); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}
