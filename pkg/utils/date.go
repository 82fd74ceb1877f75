package utils

import (
	"log"
	"time"
)

// DateLayout is the wire format used by the market data provider.
const DateLayout = "2006-01-02"

// TimeNowTaipei returns the current time in the Taiwan market timezone.
func TimeNowTaipei() time.Time {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return time.Now().In(loc)
}
