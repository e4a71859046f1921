// Package inventory loads the happi device inventory exported by whatrecord.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/ohler55/ojg/jp"
	"github.com/pcdshub/happi-to-confluence/internal/dto"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// WrapperKey is the top-level key of the whatrecord happi plugin layout.
const WrapperKey = "metadata_by_key"

// DefaultRecordSelector selects the PVs whatrecord associated with an item.
const DefaultRecordSelector = "$._whatrecord.records[*]"

// Loader decodes inventories.
type Loader struct {
	selector jp.Expr
}

// Option configures a Loader.
type Option func(*Loader) error

// WithRecordSelector sets the JSONPath used to find an item's records.
func WithRecordSelector(selector string) Option {
	return func(l *Loader) error {
		if selector == "" {
			return nil
		}
		x, err := jp.ParseString(selector)
		if err != nil {
			return fmt.Errorf("invalid record selector '%s': %w", selector, err)
		}
		l.selector = x
		return nil
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{selector: jp.MustParseString(DefaultRecordSelector)}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// LoadFile reads an inventory from disk.
func (l *Loader) LoadFile(path string) ([]domain.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	entities, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

// File is an inventory on disk, read afresh on every Load.
type File struct {
	Path   string
	Loader *Loader
}

// Load reads the inventory file.
func (f *File) Load(ctx context.Context) ([]domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Loader.LoadFile(f.Path)
}

// Load decodes an inventory in file order. The input is either a mapping of
// identifier to item, or the same mapping nested under "metadata_by_key".
func (l *Loader) Load(r io.Reader) ([]domain.Entity, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var (
		top     []keyedItem
		wrapped []keyedItem
		found   bool
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key == WrapperKey {
			wrapped, err = readItems(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", WrapperKey, err)
			}
			found = true
			continue
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("item %q: %w", key, err)
		}
		top = append(top, keyedItem{key: key, raw: raw})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	items := top
	if found {
		items = wrapped
	}

	entities := make([]domain.Entity, 0, len(items))
	for _, it := range items {
		e, err := l.decodeEntity(it.key, it.raw)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

type keyedItem struct {
	key string
	raw any
}

func readItems(dec *json.Decoder) ([]keyedItem, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var items []keyedItem
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("item %q: %w", key, err)
		}
		items = append(items, keyedItem{key: key, raw: raw})
	}
	return items, expectDelim(dec, '}')
}

func (l *Loader) decodeEntity(key string, raw any) (domain.Entity, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.Entity{}, fmt.Errorf("item %q: expected an object, got %T", key, raw)
	}

	var item dto.HappiItem
	if err := decode(obj, &item); err != nil {
		return domain.Entity{}, fmt.Errorf("item %q: %w", key, err)
	}

	e := domain.Entity{
		Name:        key,
		DeviceClass: item.DeviceClass,
		Args:        item.Args,
		Kwargs:      item.Kwargs,
		Raw:         obj,
	}
	for i, match := range l.selector.Get(obj) {
		var rec dto.RecordRef
		if err := decode(match, &rec); err != nil {
			return domain.Entity{}, fmt.Errorf("item %q: record %d: %w", key, i, err)
		}
		e.Records = append(e.Records, domain.Record{Name: rec.Name, Kind: rec.Kind})
	}
	return e, nil
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("invalid inventory: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("invalid inventory: expected key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid inventory: unexpected end of input")
		}
		return fmt.Errorf("invalid inventory: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("invalid inventory: expected %q, got %v", want, tok)
	}
	return nil
}
