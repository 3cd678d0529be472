package services

import "os"

// userHomeDir is swapped in tests.
var userHomeDir = os.UserHomeDir
