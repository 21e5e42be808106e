package empire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// decodeItems normalizes the arguments of an item event. The server sends
// either a single item object, an array of items, or arrays nested one level
// deeper; every object found is decoded. Objects without a market name are
// partial updates and are counted as skipped rather than returned.
func decodeItems(args []gjson.Result) (items []Item, skipped int, err error) {
	var errs []error

	var walk func(r gjson.Result, depth int)
	walk = func(r gjson.Result, depth int) {
		switch {
		case r.IsObject():
			var it Item
			if uerr := json.Unmarshal([]byte(r.Raw), &it); uerr != nil {
				errs = append(errs, fmt.Errorf("%w: decoding item: %w", ErrProtocol, uerr))
				return
			}
			if it.MarketName == "" {
				skipped++
				return
			}
			items = append(items, it)
		case r.IsArray() && depth < 2:
			for _, el := range r.Array() {
				walk(el, depth+1)
			}
		}
	}

	for _, arg := range args {
		walk(arg, 0)
	}

	return items, skipped, errors.Join(errs...)
}
