package main

// KeyHandler handles a key and reports whether it did.
type KeyHandler func(key string) bool

func CreateKeyHandler(f func()) KeyHandler {
	return func(key string) bool {
		f()
		return true
	}
}

// KeyMap maps emacs style key names ("Space", "S-3", "C-q") to handlers.
type KeyMap map[string]KeyHandler

func CreateKeyMap() KeyMap {
	return KeyMap{}
}

func (km KeyMap) HandleKey(key string) bool {
	if handler, ok := km[key]; ok {
		return handler(key)
	}
	return false
}

func (km KeyMap) Bind(key string, f func()) {
	km[key] = CreateKeyHandler(f)
}

func (km KeyMap) BindHandler(key string, handler KeyHandler) {
	km[key] = handler
}

func (km KeyMap) Keys() []string {
	return sortedKeys(km)
}

// modifiedKeyName prefixes a base key name with the active modifiers in
// C-M-S order.
func modifiedKeyName(base string, shift, alt, control bool) string {
	if base == "" {
		return ""
	}
	name := base
	if shift {
		name = "S-" + name
	}
	if alt {
		name = "M-" + name
	}
	if control {
		name = "C-" + name
	}
	return name
}

var digitKeys = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
