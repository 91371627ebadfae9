package models

import (
	customerrors "duty-report/errors"
	"strings"
)

// BreakPlace is one of the supervision locations a duty can be assigned to.
type BreakPlace int

const (
	IikoonLinna BreakPlace = iota
	Downstairs
	Upstairs
	FrontYard
	WingAndShed
	D
	Wing
)

type placeInfo struct {
	place   BreakPlace
	code    string
	display string
}

// placeMatchOrder is the classification order. Longer codes come first so
// that "E + S" and "Etupiha" are not read as the single-letter "E".
var placeMatchOrder = []placeInfo{
	{WingAndShed, "E + S", "E-siipi + vaja"},
	{FrontYard, "Etupiha", "Etupiha"},
	{IikoonLinna, "Linna", "Iikoon linna"},
	{Downstairs, "AK", "Alakerta"},
	{Upstairs, "YK", "Yläkerta"},
	{Wing, "E", "E-siipi"},
	{D, "D", "D"},
}

// CoveragePlaces is the fixed set checked when computing which locations a
// break slot leaves unstaffed. Wing is classified but never reported missing.
var CoveragePlaces = []BreakPlace{
	IikoonLinna,
	Downstairs,
	Upstairs,
	FrontYard,
	WingAndShed,
	D,
}

// AllBreakPlaces lists every variant in declaration order.
var AllBreakPlaces = []BreakPlace{IikoonLinna, Downstairs, Upstairs, FrontYard, WingAndShed, D, Wing}

// ParseBreakPlace classifies a duty title by the first matching place code.
func ParseBreakPlace(title string) (BreakPlace, error) {
	for _, p := range placeMatchOrder {
		if strings.Contains(title, p.code) {
			return p.place, nil
		}
	}
	return 0, &customerrors.DecodeError{Field: "Text", Value: title, Err: customerrors.ErrUnknownBreakPlace}
}

// Code returns the title substring that identifies the place.
func (p BreakPlace) Code() string {
	if info, ok := lookupPlace(p); ok {
		return info.code
	}
	return ""
}

func (p BreakPlace) String() string {
	if info, ok := lookupPlace(p); ok {
		return info.display
	}
	return "BreakPlace(?)"
}

// MarshalText emits the display name so reports and JSON output agree.
func (p BreakPlace) MarshalText() ([]byte, error) {
	if _, ok := lookupPlace(p); !ok {
		return nil, &customerrors.DecodeError{Field: "BreakPlace", Err: customerrors.ErrUnknownBreakPlace}
	}
	return []byte(p.String()), nil
}

// ParsePlaceName is the inverse of String.
func ParsePlaceName(name string) (BreakPlace, error) {
	for _, p := range placeMatchOrder {
		if p.display == name {
			return p.place, nil
		}
	}
	return 0, &customerrors.DecodeError{Field: "BreakPlace", Value: name, Err: customerrors.ErrUnknownBreakPlace}
}

func lookupPlace(p BreakPlace) (placeInfo, bool) {
	for _, info := range placeMatchOrder {
		if info.place == p {
			return info, true
		}
	}
	return placeInfo{}, false
}
