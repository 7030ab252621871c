package crud_test

import "time"

func fixedTime() time.Time {
	return time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
}
