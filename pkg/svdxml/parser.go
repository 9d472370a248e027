package svdxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/net/html/charset"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// Parser reads SVD files into the processed svd model.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a Parser. A nil logger uses slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile parses the SVD file at path.
func (p *Parser) ParseFile(path string) ([]svd.Peripheral, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("svdxml: %w", err)
	}
	defer f.Close()

	ps, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return ps, nil
}

// Parse reads one SVD document from r. The result is sorted like the JSON
// output of svdconv, see svd.SortTree with svd.ByBaseAddress.
func (p *Parser) Parse(r io.Reader) ([]svd.Peripheral, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	var dev deviceElement
	if err := d.Decode(&dev); err != nil {
		return nil, fmt.Errorf("svdxml: %w", err)
	}

	b := &builder{logger: p.logger}
	ps, err := b.device(&dev)
	if err != nil {
		return nil, fmt.Errorf("svdxml: %w", err)
	}
	p.logger.Debug("parsed SVD device", "device", dev.Name, "peripherals", len(ps))
	return ps, nil
}
