// Package connectors holds the sources that feed files into the document
// store without a user naming each path. The filesystem connector watches
// a directory and ingests supported files as they appear or change.
package connectors
