package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// seatNumber accepts a seat identifier sent either as a JSON string or as
// a JSON number.
type seatNumber string

func (s *seatNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = seatNumber(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("seatNumber: %w", err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("seatNumber must be an integer, got %s", n)
	}
	*s = seatNumber(strconv.FormatInt(v, 10))
	return nil
}

type reserveReq struct {
	SeatNumber seatNumber `json:"seatNumber"`
	Date       string     `json:"date"`
	Email      string     `json:"email"`
}

type seatReq struct {
	SeatNumber seatNumber `json:"seatNumber"`
}

type rescheduleReq struct {
	SeatNumber seatNumber `json:"seatNumber"`
	Date       string     `json:"date"`
}
