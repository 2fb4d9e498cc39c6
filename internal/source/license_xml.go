package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ru-addr/internal/address"
)

// LicenseFields are the child elements of <address_place> that are read
var LicenseFields = []string{"index", "region", "city", "street"}

const licensePlaceElement = "address_place"

// LicenseXML streams <address_place> elements from the healthcare licence
// registry dump. Only LicenseFields are kept. Places whose fields are all
// empty are skipped. Any charset declared in the XML prolog is honoured.
type LicenseXML struct {
	dec    *xml.Decoder
	fields map[string]bool
}

// NewLicenseXML creates a licence registry reader over r
func NewLicenseXML(r io.Reader) *LicenseXML {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	fields := make(map[string]bool, len(LicenseFields))
	for _, f := range LicenseFields {
		fields[f] = true
	}
	return &LicenseXML{dec: dec, fields: fields}
}

// Next returns the next non-empty place
func (lx *LicenseXML) Next() (address.Record, error) {
	for {
		rec, err := lx.nextPlace()
		if err != nil {
			return nil, err
		}
		if !rec.IsEmpty() {
			return rec, nil
		}
	}
}

func (lx *LicenseXML) nextPlace() (address.Record, error) {
	var (
		rec     address.Record
		current string
		text    strings.Builder
	)

	for {
		tok, err := lx.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read licence XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == licensePlaceElement:
				rec = address.Record{}
			case rec != nil && lx.fields[t.Name.Local]:
				current = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if current != "" {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == licensePlaceElement && rec != nil:
				return rec, nil
			case current != "" && t.Name.Local == current:
				rec[current] = text.String()
				current = ""
			}
		}
	}
}

// Close is a no-op; the caller owns the reader
func (lx *LicenseXML) Close() error {
	return nil
}
