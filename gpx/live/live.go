// Package live holds the geocache records returned by the Geocaching Live
// API, as far as the GPX model consumes them.
package live

import "time"

// Geocache is a cache record of the Live API.
type Geocache struct {
	ID                     int64       `json:"ID"`
	Code                   string      `json:"Code"`
	Name                   string      `json:"Name"`
	PlacedBy               string      `json:"PlacedBy"`
	Owner                  *Member     `json:"Owner,omitempty"`
	CacheType              *CacheType  `json:"CacheType,omitempty"`
	ContainerType          *Container  `json:"ContainerType,omitempty"`
	Difficulty             float64     `json:"Difficulty"`
	Terrain                float64     `json:"Terrain"`
	Country                string      `json:"Country"`
	CountryID              int64       `json:"CountryID"`
	State                  string      `json:"State"`
	EncodedHints           string      `json:"EncodedHints"`
	ShortDescription       string      `json:"ShortDescription"`
	ShortDescriptionIsHTML bool        `json:"ShortDescriptionIsHtml"`
	LongDescription        string      `json:"LongDescription"`
	LongDescriptionIsHTML  bool        `json:"LongDescriptionIsHtml"`
	PersonalNote           string      `json:"GeocacheNote"`
	FavoritePoints         int         `json:"FavoritePoints"`
	Attributes             []Attribute `json:"Attributes,omitempty"`
	Images                 []Image     `json:"Images,omitempty"`
	Logs                   []Log       `json:"GeocacheLogs,omitempty"`
	Trackables             []Trackable `json:"Trackables,omitempty"`
	Available              bool        `json:"Available"`
	Archived               bool        `json:"Archived"`
	IsPremium              bool        `json:"IsPremium"`
	UTCPlaceDate           time.Time   `json:"UTCPlaceDate"`
	Latitude               float64     `json:"Latitude"`
	Longitude              float64     `json:"Longitude"`
}

// Member is a geocaching.com account.
type Member struct {
	ID       int64  `json:"Id"`
	UserName string `json:"UserName"`
}

// CacheType is the type of a cache.
type CacheType struct {
	ID   int64  `json:"GeocacheTypeId"`
	Name string `json:"GeocacheTypeName"`
}

// Container is the size of a cache.
type Container struct {
	ID   int64  `json:"ContainerTypeId"`
	Name string `json:"ContainerTypeName"`
}

// Attribute is a cache attribute; IsOn false means the negated form.
type Attribute struct {
	ID   int64  `json:"AttributeTypeID"`
	IsOn bool   `json:"IsOn"`
	Name string `json:"Name"`
}

// Image is an image attached to a cache or a log.
type Image struct {
	URL         string `json:"Url"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// LogType is the type of a log.
type LogType struct {
	ID   int64  `json:"WptLogTypeId"`
	Name string `json:"WptLogTypeName"`
}

// Log is a log entry.
type Log struct {
	ID               int64     `json:"ID"`
	Finder           *Member   `json:"Finder,omitempty"`
	LogType          *LogType  `json:"LogType,omitempty"`
	Text             string    `json:"LogText"`
	TextEncoded      bool      `json:"LogIsEncoded"`
	VisitDate        time.Time `json:"VisitDate"`
	Images           []Image   `json:"Images,omitempty"`
	UpdatedLatitude  *float64  `json:"UpdatedLatitude,omitempty"`
	UpdatedLongitude *float64  `json:"UpdatedLongitude,omitempty"`
}

// Trackable is a travel bug or geocoin in a cache.
type Trackable struct {
	ID   int64  `json:"Id"`
	Code string `json:"Code"`
	Name string `json:"Name"`
}
