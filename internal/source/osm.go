package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ru-addr/internal/address"
)

// Keys holding the element identity in records produced by OSM
const (
	OSMTypeKey = "@type"
	OSMIDKey   = "@id"
)

var osmElements = map[string]bool{"node": true, "way": true, "relation": true}

// OSM streams tagged elements from an .osm XML extract. Only elements with
// at least one addr:* or is_in:* tag are returned; the record holds all
// their tags plus OSMTypeKey and OSMIDKey.
type OSM struct {
	dec *xml.Decoder
}

// NewOSM creates an OSM extract reader over r
func NewOSM(r io.Reader) *OSM {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return &OSM{dec: dec}
}

// Next returns the next element carrying address tags
func (o *OSM) Next() (address.Record, error) {
	var rec address.Record

	for {
		tok, err := o.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read OSM XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case osmElements[t.Name.Local]:
				rec = address.Record{OSMTypeKey: t.Name.Local, OSMIDKey: attr(t, "id")}
			case t.Name.Local == "tag" && rec != nil:
				if k := attr(t, "k"); k != "" {
					rec[k] = attr(t, "v")
				}
			}
		case xml.EndElement:
			if osmElements[t.Name.Local] && rec != nil {
				if hasAddressTags(rec) {
					return rec, nil
				}
				rec = nil
			}
		}
	}
}

// Close is a no-op; the caller owns the reader
func (o *OSM) Close() error {
	return nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func hasAddressTags(rec address.Record) bool {
	for k := range rec {
		if strings.HasPrefix(k, "addr:") || strings.HasPrefix(k, "is_in:") {
			return true
		}
	}
	return false
}
