// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/fieldtrail/internal/geometry"
	"github.com/tomtom215/fieldtrail/internal/models"
)

// trailsFeatureCollection renders each trail as one feature: a LineString
// for two or more points, a Point for a single fix. Empty trails are omitted.
func trailsFeatureCollection(trails []models.Trail) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	var all orb.Bound
	first := true

	for i := range trails {
		t := &trails[i]
		coords := t.Coordinates()
		if len(coords) == 0 {
			continue
		}

		ls := geometry.ToLineString(coords)
		var g orb.Geometry = ls
		if len(ls) == 1 {
			g = ls[0]
		}

		f := geojson.NewFeature(g)
		f.ID = t.User.ID
		f.BBox = geojson.NewBBox(ls.Bound())
		f.Properties["user_id"] = t.User.ID
		f.Properties["display_name"] = t.User.DisplayName
		f.Properties["points"] = len(coords)
		f.Properties["distance_m"] = geometry.TrailLength(coords)
		f.Properties["first_ts"] = t.Path[0].Timestamp
		f.Properties["last_ts"] = t.Path[len(t.Path)-1].Timestamp
		if t.User.EmployeeID != "" {
			f.Properties["employee_id"] = t.User.EmployeeID
		}
		if t.User.Region != "" {
			f.Properties["region"] = t.User.Region
		}
		fc.Append(f)

		if first {
			all, first = ls.Bound(), false
		} else {
			all = all.Union(ls.Bound())
		}
	}

	if !first {
		fc.BBox = geojson.NewBBox(all)
	}
	return fc
}
