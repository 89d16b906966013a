package metadata

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
)

// Sidecar is the serialized form of a record written next to the decoded
// audio file.
type Sidecar struct {
	Title       string   `json:"title,omitempty"`
	Artists     []string `json:"artists,omitempty"`
	Album       string   `json:"album,omitempty"`
	AlbumArtURL string   `json:"album_art_url,omitempty"`
	Duration    int64    `json:"duration_ms,omitempty"`
	Bitrate     int      `json:"bitrate,omitempty"`
	Format      string   `json:"format,omitempty"`
	SourceID    string   `json:"source_id,omitempty"`
	AlbumID     string   `json:"album_id,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`

	ArtworkMIME string `json:"artwork_mime,omitempty"`
	ArtworkData []byte `json:"artwork_data,omitempty"`
}

// NewSidecar flattens a record and, optionally, its cover.
func NewSidecar(rec *Record, art *Artwork) *Sidecar {
	sc := &Sidecar{
		Title:       rec.Title,
		Artists:     rec.Artists,
		Album:       rec.Album,
		AlbumArtURL: rec.AlbumArtURL,
		Duration:    rec.Duration.Milliseconds(),
		Bitrate:     rec.Bitrate,
		Format:      rec.Format,
		SourceID:    rec.SourceID,
		AlbumID:     rec.AlbumID,
		Aliases:     rec.Aliases,
	}

	if art != nil {
		sc.ArtworkMIME = art.MIMEType
		sc.ArtworkData = art.Data
	}

	return sc
}

// ToJSONFormat converts the sidecar to indented JSON.
func (sc *Sidecar) ToJSONFormat() []byte {
	data, _ := json.MarshalIndent(sc, "", "  ")
	return append(data, '\n')
}

// ToXMLFormat converts the sidecar to the item stream understood by
// shairport-sync style metadata readers.
func (sc *Sidecar) ToXMLFormat() []byte {
	var result []byte

	encodeItem := func(itemType, code, data string) []byte {
		return []byte(fmt.Sprintf("<item><type>%08x</type><code>%08x</code><length>%x</length><data>%s</data></item>\n",
			stringToUint32(itemType), stringToUint32(code), len(data), base64.StdEncoding.EncodeToString([]byte(data))))
	}

	if sc.Title != "" {
		result = append(result, encodeItem("core", "minm", sc.Title)...)
	}
	if len(sc.Artists) > 0 {
		result = append(result, encodeItem("core", "asar", strings.Join(sc.Artists, "/"))...)
	}
	if sc.Album != "" {
		result = append(result, encodeItem("core", "asal", sc.Album)...)
	}
	if sc.Duration > 0 {
		result = append(result, encodeItem("core", "astm", fmt.Sprintf("%d", sc.Duration))...)
	}
	if sc.SourceID != "" {
		result = append(result, encodeItem("core", "mper", sc.SourceID)...)
	}
	if len(sc.ArtworkData) > 0 {
		result = append(result, encodeItem("ssnc", "PICT", string(sc.ArtworkData))...)
	}

	return result
}

func stringToUint32(s string) uint32 {
	var b [4]byte
	copy(b[:], s)
	return binary.BigEndian.Uint32(b[:])
}
