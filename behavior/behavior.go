/*
DESCRIPTION
  behavior.go provides detection of sudden changes in swim speed, which
  indicate behaviours such as snapping or grazing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package behavior derives fish behaviour measures from a series of per frame
// swim speeds and flow directions: sudden change events, summary statistics,
// direction histograms and the periodicity of swimming.
package behavior

import "math"

// SuddenChangeDescription describes every sudden change event.
const SuddenChangeDescription = "Possible snapping/grazing behavior"

// Event is a sudden change in average swim speed between consecutive frame
// pairs.
type Event struct {
	// Frame is the index of the later frame of the pair whose speed jumped,
	// in the extracted frame sequence.
	Frame       int     `json:"frame"`
	SpeedChange float64 `json:"speed_change"`
	Description string  `json:"description"`
}

// DetectSuddenChanges returns an event for each j >= 1 where the absolute
// difference between speeds[j] and speeds[j-1] is strictly greater than
// threshold. speeds[j] is the speed between frames j and j+1, so the event
// frame is j+1.
func DetectSuddenChanges(speeds []float64, threshold float64) []Event {
	var events []Event
	for j := 1; j < len(speeds); j++ {
		change := math.Abs(speeds[j] - speeds[j-1])
		if change > threshold {
			events = append(events, Event{
				Frame:       j + 1,
				SpeedChange: change,
				Description: SuddenChangeDescription,
			})
		}
	}
	return events
}
