package redis

import "fmt"

const ns = "bms:v1"

func KeyBusSummary(busID string) string {
	return fmt.Sprintf("%s:bus:%s:summary", ns, busID)
}

func KeyBusList() string {
	return ns + ":buses:all"
}

func KeyCoupons() string {
	return ns + ":coupons:active"
}

func KeySeatHold(busID, seatID string) string {
	return fmt.Sprintf("%s:bus:%s:seat:%s:hold", ns, busID, seatID)
}

func KeyUserHold(busID string, userID int64) string {
	return fmt.Sprintf("%s:bus:%s:hold:user:%d", ns, busID, userID)
}

func ChannelBusesChanged() string {
	return ns + ":buses:changed"
}
