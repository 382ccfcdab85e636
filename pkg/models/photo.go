package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Photo is a single record from the photos array of a search response.
//
// The typed fields are convenience accessors for the members the API is known
// to send. Fields keeps every member exactly as received, so re-encoding a
// decoded Photo yields the original object even when the API adds members
// this package does not know about.
type Photo struct {
	ID         string
	Title      string
	PhotoURL   string
	FileURL    string
	Location   *Location
	Width      int
	Height     int
	UploadDate string
	OwnerID    string
	OwnerName  string
	OwnerURL   string

	Fields map[string]json.RawMessage
}

// Wire member names
const (
	FieldPhotoID    = "photo_id"
	FieldTitle      = "photo_title"
	FieldPhotoURL   = "photo_url"
	FieldFileURL    = "photo_file_url"
	FieldLatitude   = "latitude"
	FieldLongitude  = "longitude"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldUploadDate = "upload_date"
	FieldOwnerID    = "owner_id"
	FieldOwnerName  = "owner_name"
	FieldOwnerURL   = "owner_url"
)

// UnmarshalJSON decodes a photo object. Only a non-object input is an error;
// missing or oddly typed members simply leave the typed field empty.
func (p *Photo) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = Photo{Fields: fields}
	p.ID = rawText(fields[FieldPhotoID])
	p.Title = rawText(fields[FieldTitle])
	p.PhotoURL = rawText(fields[FieldPhotoURL])
	p.FileURL = rawText(fields[FieldFileURL])
	p.UploadDate = rawText(fields[FieldUploadDate])
	p.OwnerID = rawText(fields[FieldOwnerID])
	p.OwnerName = rawText(fields[FieldOwnerName])
	p.OwnerURL = rawText(fields[FieldOwnerURL])
	p.Width = int(rawFloat(fields[FieldWidth]))
	p.Height = int(rawFloat(fields[FieldHeight]))

	latRaw, hasLat := fields[FieldLatitude]
	lonRaw, hasLon := fields[FieldLongitude]
	if hasLat && hasLon {
		lat, latOK := parseFloat(latRaw)
		lon, lonOK := parseFloat(lonRaw)
		if latOK && lonOK {
			p.Location = &Location{Lat: lat, Lon: lon}
		}
	}
	return nil
}

// MarshalJSON emits the members as received. Photos built in code, without
// Fields, are encoded from their typed fields.
func (p Photo) MarshalJSON() ([]byte, error) {
	if p.Fields != nil {
		return json.Marshal(p.Fields)
	}

	out := map[string]any{
		FieldTitle:    p.Title,
		FieldPhotoURL: p.PhotoURL,
		FieldFileURL:  p.FileURL,
	}
	if p.ID != "" {
		out[FieldPhotoID] = p.ID
	}
	if p.Location != nil {
		out[FieldLatitude] = p.Location.Lat
		out[FieldLongitude] = p.Location.Lon
	}
	if p.Width != 0 {
		out[FieldWidth] = p.Width
	}
	if p.Height != 0 {
		out[FieldHeight] = p.Height
	}
	if p.UploadDate != "" {
		out[FieldUploadDate] = p.UploadDate
	}
	if p.OwnerID != "" {
		out[FieldOwnerID] = p.OwnerID
	}
	if p.OwnerName != "" {
		out[FieldOwnerName] = p.OwnerName
	}
	if p.OwnerURL != "" {
		out[FieldOwnerURL] = p.OwnerURL
	}
	return json.Marshal(out)
}

// Key identifies a photo for deduplication: the photo id, or the page URL
// when the API did not send an id.
func (p *Photo) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.PhotoURL
}

// Clone returns a deep copy; the location and every raw field are copied
func (p *Photo) Clone() *Photo {
	if p == nil {
		return nil
	}
	out := *p
	if p.Location != nil {
		loc := *p.Location
		out.Location = &loc
	}
	if p.Fields != nil {
		out.Fields = make(map[string]json.RawMessage, len(p.Fields))
		for k, v := range p.Fields {
			out.Fields[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &out
}

// rawText returns strings unquoted and numbers in their literal form
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawFloat(raw json.RawMessage) float64 {
	f, _ := parseFloat(raw)
	return f
}

// parseFloat accepts both JSON numbers and numeric strings
func parseFloat(raw json.RawMessage) (float64, bool) {
	s := rawText(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
