package sinks

func passThrough(value any) string {
	return Stringify(value)
}

func quotedAttribute(value any) string {
	return `<span title="` + Stringify(value) + `">hover me</span>`
}

func unquotedAttribute(value any) string {
	return `<span title=` + Stringify(value) + `>hover me</span>`
}

func styleElement(value any) string {
	return "<style>" + Stringify(value) + "</style><p>styled text</p>"
}
