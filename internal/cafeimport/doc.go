// Package cafeimport reads cafe lists from spreadsheets and writes the
// plain text export and the import template.
//
// Import files are either xlsx workbooks (first sheet) or csv files with a
// header row. Headers may be written in Korean or English; see Parse for the
// accepted spellings. Permission cells accept the usual yes/no tokens in both
// languages and default to true.
package cafeimport
