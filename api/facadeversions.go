// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

// facadeVersions lists the best version of facades that we know about.
// This will be used to pick out a default version for communication,
// given the list of known versions that the API server tells us it is
// capable of supporting. This map should be updated whenever the API
// server exposes a new version (so that the client will use it whenever
// it is available).
var facadeVersions = map[string]int{
	"Admin":        3,
	"AllWatcher":   1,
	"Application":  1,
	"Client":       1,
	"ModelConfig":  1,
	"ModelManager": 2,
	"Pinger":       1,
}

// bestVersion tries to find the newest version in the version list
// that we can use.
func bestVersion(desiredVersion int, versions []int) int {
	best := 0
	for _, version := range versions {
		if version <= desiredVersion && version > best {
			best = version
		}
	}
	return best
}
