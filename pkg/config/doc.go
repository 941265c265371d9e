// Package config loads the dotlink configuration document and the documents
// it imports into one in-memory structure.
package config
