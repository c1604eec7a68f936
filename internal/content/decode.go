package content

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	errInvalidJSON = errors.New("body is not valid JSON")
	errNotObject   = errors.New("body is not a JSON object")
)

// decodeNode extracts a Node from a resource body. Child URLs come from the
// item's "@id"; items that only carry an "id" are resolved against url.
func decodeNode(url string, body []byte) (Node, error) {
	if !gjson.ValidBytes(body) {
		return Node{}, &DecodeError{URL: url, Err: errInvalidJSON}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Node{}, &DecodeError{URL: url, Err: errNotObject}
	}

	node := Node{
		ID:    doc.Get("id").String(),
		Type:  Type(member(doc, "@type").String()),
		Title: doc.Get("title").String(),
	}

	items := doc.Get("items")
	if items.Exists() && !items.IsArray() {
		return Node{}, &DecodeError{URL: url, Err: fmt.Errorf("items is %s, want array", items.Type)}
	}
	var itemErr error
	items.ForEach(func(index, item gjson.Result) bool {
		ref := Item{
			ID:  item.Get("id").String(),
			URL: member(item, "@id").String(),
		}
		if ref.URL == "" && ref.ID != "" {
			ref.URL = ChildURL(url, ref.ID)
		}
		if ref.URL == "" {
			itemErr = fmt.Errorf("item %d has neither @id nor id", index.Int())
			return false
		}
		node.Items = append(node.Items, ref)
		return true
	})
	if itemErr != nil {
		return Node{}, &DecodeError{URL: url, Err: itemErr}
	}

	if length := doc.Get("length"); length.Exists() {
		node.Length = int(length.Int())
	} else {
		node.Length = len(node.Items)
	}
	return node, nil
}

// member looks up a top-level key verbatim. Keys starting with "@" are
// modifiers in gjson path syntax, so they cannot go through Get.
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			return false
		}
		return true
	})
	return found
}
