package tags

import (
	"errors"
	"sort"
)

var errCannotRemoveManagementTags = errors.New("cannot remove management tags")

func sortStrings(s []string) {
	sort.Strings(s)
}
