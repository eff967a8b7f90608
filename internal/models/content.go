package models

// Document is a request payload stored as sent: featured items, testimonials,
// subscribers, trainer applications, classes, forum posts, challenges and
// payments all keep every field the client posted.
type Document map[string]interface{}

// Without returns a copy of d minus the given keys.
func (d Document) Without(keys ...string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// String returns the value of key when it is a string.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Strings returns the string entries of the list under key.
func (d Document) Strings(key string) []string {
	list, _ := d[key].([]interface{})
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
