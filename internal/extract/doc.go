// Package extract turns fetched markup and feed text into lead fields.
//
// The listing heuristics work on rendered search-result pages: they pick links whose href
// matches the site's listing pattern and scope a small search around each link for a
// description, a price and a location. The text helpers strip markup, collapse whitespace,
// normalize dates and infer locations for feed entries.
package extract
