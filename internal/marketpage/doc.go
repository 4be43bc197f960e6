// Package marketpage extracts the few values byebye needs from Discogs
// marketplace HTML without parsing the DOM.
//
// Each field has an ordered list of label variants in Japanese and English.
// Variants are tried in order and the first match wins, so supporting a new
// page wording is a table edit. The functions are pure: they take markup and
// return values, and know nothing about fetching.
package marketpage
