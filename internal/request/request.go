// Package request turns decoded path options into typed requests.
//
// Reads and writes use separate types. GetRequest carries client supplied
// time bounds; PostRequest has no time field at all, because the server
// stamps write times itself.
package request

import (
	"strconv"

	"github.com/KhaledSharif/rocket/internal/errors"
	"github.com/KhaledSharif/rocket/internal/options"
	"github.com/KhaledSharif/rocket/internal/store"
)

// Option names recognised on the /message endpoints.
const (
	OptionKey    = "key"
	OptionValue  = "value"
	OptionTimeGt = "time_gt"
	OptionTimeLt = "time_lt"
)

// GetRequest is a range query over one key.
type GetRequest struct {
	Key    string
	TimeGt *uint64 // exclusive lower bound, nil when unbounded
	TimeLt *uint64 // exclusive upper bound, nil when unbounded
}

// NewGetRequest builds a GetRequest. key is required; time_gt and time_lt are
// optional and must be base-10 unsigned integers when present. Options other
// than these are ignored.
func NewGetRequest(opts options.Set) (GetRequest, error) {
	key, ok := opts.Get(OptionKey)
	if !ok {
		return GetRequest{}, errors.NewMissingField(OptionKey)
	}

	gt, err := timeOption(opts, OptionTimeGt)
	if err != nil {
		return GetRequest{}, err
	}
	lt, err := timeOption(opts, OptionTimeLt)
	if err != nil {
		return GetRequest{}, err
	}

	return GetRequest{Key: key, TimeGt: gt, TimeLt: lt}, nil
}

// Filter returns the storage predicate for r. Bounds are passed through
// unchanged and stay exclusive.
func (r GetRequest) Filter() store.Filter {
	return store.Filter{
		Key:    r.Key,
		TimeGt: r.TimeGt,
		TimeLt: r.TimeLt,
	}
}

func timeOption(opts options.Set, name string) (*uint64, error) {
	raw, ok := opts.Get(name)
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &errors.InvalidTimeError{Name: name, Value: raw}
	}
	return &v, nil
}

// PostRequest is a write of one value under one key.
type PostRequest struct {
	Key   string
	Value string
}

// NewPostRequest builds a PostRequest. key and value are both required.
// A time option, if sent, is ignored.
func NewPostRequest(opts options.Set) (PostRequest, error) {
	key, ok := opts.Get(OptionKey)
	if !ok {
		return PostRequest{}, errors.NewMissingField(OptionKey)
	}
	value, ok := opts.Get(OptionValue)
	if !ok {
		return PostRequest{}, errors.NewMissingField(OptionValue)
	}
	return PostRequest{Key: key, Value: value}, nil
}
