// Package metadata maps the decrypted metadata text of a container onto a
// Record and exposes the embedded cover image.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Record describes the track stored in a container. Every field is optional,
// a missing field is left at its zero value.
type Record struct {
	Title       string
	Artists     []string
	Album       string
	AlbumArtURL string
	Duration    time.Duration
	Bitrate     int
	Format      string
	SourceID    string
	AlbumID     string
	Aliases     []string
}

// FieldError reports a field that is present but could not be decoded.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

var ErrNotObject = errors.New("metadata is not a JSON object")

// Parse decodes the metadata text. It always returns a usable record: when
// the text or some of its fields cannot be decoded the record keeps whatever
// did decode and the returned error describes the rest.
func Parse(text []byte) (*Record, error) {
	rec := &Record{}

	text = bytes.TrimSpace(text)
	if len(text) == 0 {
		return rec, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(text, &fields); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrNotObject, err)
	} else if fields == nil {
		return rec, ErrNotObject
	}

	// radio programs wrap the track in mainMusic
	if main, ok := fields["mainMusic"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(main, &inner); err == nil && inner != nil {
			fields = inner
		}
	}

	var errs []error
	decode := func(name string, fn func(json.RawMessage) error) {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			return
		}

		if err := fn(raw); err != nil {
			errs = append(errs, &FieldError{Field: name, Err: err})
		}
	}

	decode("musicName", func(raw json.RawMessage) (err error) {
		rec.Title, err = decodeString(raw)
		return err
	})
	decode("artist", func(raw json.RawMessage) (err error) {
		rec.Artists, err = decodeArtists(raw)
		return err
	})
	decode("album", func(raw json.RawMessage) (err error) {
		rec.Album, err = decodeString(raw)
		return err
	})
	decode("albumPic", func(raw json.RawMessage) (err error) {
		rec.AlbumArtURL, err = decodeString(raw)
		return err
	})
	decode("duration", func(raw json.RawMessage) error {
		ms, err := decodeInt(raw)
		if err != nil {
			return err
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		return nil
	})
	decode("bitrate", func(raw json.RawMessage) error {
		br, err := decodeInt(raw)
		if err != nil {
			return err
		}
		rec.Bitrate = int(br)
		return nil
	})
	decode("format", func(raw json.RawMessage) (err error) {
		rec.Format, err = decodeString(raw)
		return err
	})
	decode("musicId", func(raw json.RawMessage) (err error) {
		rec.SourceID, err = decodeString(raw)
		return err
	})
	decode("albumId", func(raw json.RawMessage) (err error) {
		rec.AlbumID, err = decodeString(raw)
		return err
	})
	decode("alias", func(raw json.RawMessage) (err error) {
		rec.Aliases, err = decodeStrings(raw)
		return err
	})

	return rec, errors.Join(errs...)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeString accepts strings and numbers, ids are found encoded as both.
func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number: %s", raw)
	}
	return n.String(), nil
}

func decodeInt(raw json.RawMessage) (int64, error) {
	s, err := decodeString(raw)
	if err != nil {
		return 0, err
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer: %s", raw)
	}
	return int64(f), nil
}

func decodeStrings(raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("expected array: %s", raw)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := decodeString(item)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// decodeArtists reads the [[name, id], ...] list. Plain names and objects with
// a name are accepted as well.
func decodeArtists(raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("expected array: %s", raw)
	}

	var names []string
	for _, item := range items {
		if name, err := decodeString(item); err == nil {
			names = append(names, name)
			continue
		}

		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err == nil {
			if len(pair) == 0 {
				continue
			}

			name, err := decodeString(pair[0])
			if err != nil {
				return names, err
			}
			names = append(names, name)
			continue
		}

		var obj struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.Name == nil {
			return names, fmt.Errorf("unexpected artist entry: %s", item)
		}
		names = append(names, *obj.Name)
	}

	return names, nil
}
