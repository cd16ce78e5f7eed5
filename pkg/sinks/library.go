package sinks

import (
	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/dom/jquery"
)

const marker = "<span>marker</span>"

func jqText(target *jquery.Selection, value any) error {
	target.SetText(Stringify(value))
	return nil
}

func jqHtml(target *jquery.Selection, value any) error {
	target.SetHtml(Stringify(value))
	return nil
}

// jqConstruct builds nodes with $(html) and appends them.
func jqConstruct(target *jquery.Selection, value any) error {
	target.AppendSelection(jquery.Parse(target.Document(), Stringify(value)))
	return nil
}

func jqPrepend(target *jquery.Selection, value any) error {
	target.Append(marker)
	target.Prepend(Stringify(value))
	return nil
}

func jqAppend(target *jquery.Selection, value any) error {
	target.Append(Stringify(value))
	return nil
}

// The sibling helpers work on a child so that everything stays inside the
// container.
func jqBefore(target *jquery.Selection, value any) error {
	target.Append(marker)
	target.Children().Before(Stringify(value))
	return nil
}

func jqAfter(target *jquery.Selection, value any) error {
	target.Append(marker)
	target.Children().After(Stringify(value))
	return nil
}

func jqWrap(target *jquery.Selection, value any) error {
	target.Append(marker)
	target.Children().Wrap(Stringify(value))
	return nil
}

func jqAttrTitle(target *jquery.Selection, value any) error {
	target.Append("<span>hover me</span>")
	target.Children().SetAttr("title", Stringify(value))
	return nil
}

func jqAnchorHref(target *jquery.Selection, value any) error {
	target.Append(`<a target="` + config.DefaultDemoWindowName + `">click me</a>`)
	target.Children().SetAttr("href", Stringify(value))
	return nil
}

// jqScriptBlock is $("<script>").text(payload).appendTo(target).
func jqScriptBlock(target *jquery.Selection, value any) error {
	script := jquery.Parse(target.Document(), "<script></script>")
	script.SetText(Stringify(value))
	target.AppendSelection(script)
	return nil
}
