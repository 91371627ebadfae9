package parser

import (
	customerrors "duty-report/errors"
	"duty-report/models"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// IdentityMarker marks the landing-page line whose link carries the
	// session's identity path.
	IdentityMarker = "text-style-link"
	// ProfileLinkMarker marks one person's row in a profile listing.
	ProfileLinkMarker = `class="profile-link `
)

// minHrefSegments is the smallest split of an identity-rooted profile href:
// "", identity, "profiles", kind, id.
const minHrefSegments = 5

// ParseIdentity returns the identity path segment from the authenticated
// landing page, without its leading slash.
func ParseIdentity(document string) (string, error) {
	line, ok := FirstLine(document, IdentityMarker)
	if !ok {
		return "", &customerrors.ExtractError{Marker: IdentityMarker, Err: customerrors.ErrNoMatchingLine}
	}

	href, err := anchorHref(line)
	if err != nil {
		return "", &customerrors.ExtractError{Marker: IdentityMarker, Line: line, Err: err}
	}
	if !strings.HasPrefix(href, "/") || len(href) < 2 {
		return "", &customerrors.ExtractError{Marker: IdentityMarker, Line: line, Err: customerrors.ErrMalformedHref}
	}
	return href[1:], nil
}

// ParsePersonIDs reads the numeric IDs out of every profile link on a
// listing page. IDs are unique and kept in first-seen order. The first
// line that cannot be read aborts the whole listing.
func ParsePersonIDs(document string) ([]uint32, error) {
	var ids []uint32
	seen := make(map[uint32]bool)

	for _, line := range MatchingLines(document, ProfileLinkMarker) {
		// The listing puts an anchor's text on the following line;
		// self-closing the tags keeps each line a complete fragment.
		href, err := anchorHref(strings.ReplaceAll(line, ">", "/>"))
		if err != nil {
			return nil, &customerrors.ExtractError{Marker: ProfileLinkMarker, Line: line, Err: err}
		}

		id, err := PersonIDFromHref(href)
		if err != nil {
			return nil, &customerrors.ExtractError{Marker: ProfileLinkMarker, Line: line, Err: err}
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// PersonIDFromHref takes the path segment after the profile kind
// ("teachers" or "personnel"), falling back to segment 4.
func PersonIDFromHref(href string) (uint32, error) {
	parts := strings.Split(href, "/")
	if len(parts) < minHrefSegments {
		return 0, customerrors.ErrMalformedHref
	}

	seg := parts[4]
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == string(models.Teachers) || parts[i] == string(models.Personnel) {
			seg = parts[i+1]
			break
		}
	}

	id, err := strconv.ParseUint(strings.TrimSpace(seg), 10, 32)
	if err != nil {
		return 0, customerrors.ErrInvalidID
	}
	return uint32(id), nil
}

// anchorHref parses one line as a body fragment and reads the first
// anchor's href.
func anchorHref(fragment string) (string, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "", err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	a := goquery.NewDocumentFromNode(root).Find("a").First()
	if a.Length() == 0 {
		return "", customerrors.ErrNoAnchor
	}
	href, ok := a.Attr("href")
	if !ok {
		return "", customerrors.ErrNoHref
	}
	return href, nil
}
