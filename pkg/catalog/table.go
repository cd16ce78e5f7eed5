package catalog

import "github.com/lcalzada-xor/xsslab/pkg/models"

const (
	recommended  = models.QualityRecommended
	questionable = models.QualityQuestionable
	insecure     = models.QualityInsecure
)

var table = []CollectionDef{
	{
		Context: models.ContextHTMLContent,
		Descriptors: []DescriptorDef{
			{ID: "DomTextContent", Name: "element.textContent = payload", Quality: recommended, Sink: DOM("textContent"),
				Description: "Text is inserted as a text node and never parsed."},
			{ID: "DomInnerText", Name: "element.innerText = payload", Quality: recommended, Sink: DOM("innerText"),
				Description: "Like textContent, with newlines rendered as line breaks."},
			{ID: "DomInnerHtmlRaw", Name: "element.innerHTML = payload", Quality: insecure, Sink: DOM("innerHtml"),
				Description: "Markup is parsed; event handlers fire although inline scripts do not run."},
			{ID: "DomInnerHtmlEncoded", Name: "element.innerHTML = htmlEncode(payload)", Quality: recommended, Processor: "htmlEncode", Sink: DOM("innerHtml"),
				Description: "Encoding turns every markup character into an entity."},
			{ID: "DomInnerHtmlSanitizedStrict", Name: "element.innerHTML = sanitize(payload) (strict)", Quality: recommended, Processor: "sanitizeStrict", Sink: DOM("innerHtml"),
				Description: "A sanitizer that keeps text only."},
			{ID: "DomInnerHtmlSanitizedInline", Name: "element.innerHTML = sanitize(payload) (inline)", Quality: recommended, Processor: "sanitizeInline", Sink: DOM("innerHtml"),
				Description: "A sanitizer that keeps inline formatting without attributes."},
			{ID: "DomInnerHtmlSanitizedRich", Name: "element.innerHTML = sanitize(payload) (rich)", Quality: recommended, Processor: "sanitizeRich", Sink: DOM("innerHtml"),
				Description: "A sanitizer that keeps block markup and links with safe URLs."},
			{ID: "DomInnerHtmlDetached", Name: "detached.innerHTML = payload", Quality: questionable, Sink: DOM("innerHtmlDetached"),
				Description: "Parsing into an element that is never inserted runs nothing, but one insertion away from innerHTML."},
			{ID: "DomAppendTextNode", Name: "element.appendChild(createTextNode(payload))", Quality: recommended, Processor: "textNode", Sink: DOM("appendNode"),
				Description: "An explicit text node."},
			{ID: "HtmlSourceRaw", Name: "<div>{payload}</div>", Quality: insecure, Sink: Source("passThrough"),
				Description: "Server-side concatenation into HTML source."},
			{ID: "HtmlSourceEncoded", Name: "<div>{htmlEncode(payload)}</div>", Quality: recommended, Processor: "htmlEncode", Sink: Source("passThrough"),
				Description: "Server-side concatenation with HTML encoding."},
			{ID: "JQueryText", Name: "$(element).text(payload)", Quality: recommended, Sink: Library("jqText"),
				Description: "jQuery text insertion."},
			{ID: "JQueryHtml", Name: "$(element).html(payload)", Quality: insecure, Sink: Library("jqHtml"),
				Description: "jQuery markup insertion; unlike innerHTML it also runs scripts."},
			{ID: "JQueryHtmlSanitized", Name: "$(element).html(sanitize(payload))", Quality: recommended, Processor: "sanitizeRich", Sink: Library("jqHtml"),
				Description: "jQuery markup insertion behind the rich sanitizer."},
			{ID: "JQueryConstruct", Name: "$(element).append($(payload))", Quality: insecure, Sink: Library("jqConstruct"),
				Description: "The $(html) constructor parses its argument."},
			{ID: "JQueryAppend", Name: "$(element).append(payload)", Quality: insecure, Sink: Library("jqAppend")},
			{ID: "JQueryPrepend", Name: "$(element).prepend(payload)", Quality: insecure, Sink: Library("jqPrepend")},
			{ID: "JQueryBefore", Name: "$(child).before(payload)", Quality: insecure, Sink: Library("jqBefore")},
			{ID: "JQueryAfter", Name: "$(child).after(payload)", Quality: insecure, Sink: Library("jqAfter")},
			{ID: "JQueryWrap", Name: "$(child).wrap(payload)", Quality: insecure, Sink: Library("jqWrap")},
			{ID: "TemplateInterpolation", Name: "{{.Value}}", Quality: recommended, Sink: Template("interpolation"),
				Description: "Template interpolation is always escaped."},
			{ID: "TemplateInnerHtmlBinding", Name: "innerHTML binding", Quality: recommended, Sink: Template("innerHtmlBinding"),
				Description: "The binding sanitizes untrusted values."},
			{ID: "TemplateInnerHtmlTrusted", Name: "innerHTML binding of trusted HTML", Quality: insecure, Processor: "trustHtml", Sink: Template("innerHtmlBinding"),
				Description: "Marking the payload as trusted HTML bypasses sanitization."},
		},
	},
	{
		Context: models.ContextHTMLAttribute,
		Descriptors: []DescriptorDef{
			{ID: "DomSetAttributeTitle", Name: `element.setAttribute("title", payload)`, Quality: recommended, Sink: DOM("titleAttribute"),
				Description: "Attribute values set through the DOM cannot break out."},
			{ID: "HtmlSourceQuotedAttribute", Name: `<span title="{payload}">`, Quality: insecure, Sink: Source("quotedAttribute")},
			{ID: "HtmlSourceQuotedAttributeEncoded", Name: `<span title="{htmlEncode(payload)}">`, Quality: recommended, Processor: "htmlEncode", Sink: Source("quotedAttribute"),
				Description: "Encoded quotes keep the value inside the attribute."},
			{ID: "HtmlSourceUnquotedAttribute", Name: `<span title={payload}>`, Quality: insecure, Sink: Source("unquotedAttribute")},
			{ID: "HtmlSourceUnquotedAttributeEncoded", Name: `<span title={htmlEncode(payload)}>`, Quality: questionable, Processor: "htmlEncode", Sink: Source("unquotedAttribute"),
				Description: "Encoding does not touch spaces, so an unquoted value can still add attributes."},
			{ID: "JQueryAttrTitle", Name: `$(child).attr("title", payload)`, Quality: recommended, Sink: Library("jqAttrTitle")},
			{ID: "TemplateAttributeBinding", Name: `title="{{.Value}}"`, Quality: recommended, Sink: Template("attributeBinding")},
		},
	},
	{
		Context: models.ContextURL,
		Descriptors: []DescriptorDef{
			{ID: "DomAnchorHref", Name: "a.href = payload", Quality: insecure, Sink: DOM("anchorHref"),
				Description: "javascript: URLs run when the link is followed."},
			{ID: "DomAnchorHrefValidated", Name: "a.href = urlValidate(payload)", Quality: recommended, Processor: "urlValidate", Sink: DOM("anchorHref"),
				Description: "Only absolute http and https URLs are kept."},
			{ID: "DomIframeSrc", Name: "iframe.src = payload", Quality: insecure, Sink: DOM("iframeSrc"),
				Description: "A javascript: frame source runs as soon as the frame is inserted."},
			{ID: "DomIframeSrcValidated", Name: "iframe.src = urlValidate(payload)", Quality: recommended, Processor: "urlValidate", Sink: DOM("iframeSrc")},
			{ID: "JQueryAnchorHref", Name: `$(a).attr("href", payload)`, Quality: insecure, Sink: Library("jqAnchorHref")},
			{ID: "TemplateUrlBinding", Name: `href="{{.Value}}"`, Quality: recommended, Sink: Template("urlBinding"),
				Description: "Unsafe URL schemes are replaced by the template engine."},
			{ID: "TemplateUrlTrusted", Name: "href binding of a trusted URL", Quality: insecure, Processor: "trustUrl", Sink: Template("urlBinding")},
			{ID: "TemplateResourceUrlTrusted", Name: "iframe src binding of a trusted URL", Quality: insecure, Processor: "trustResourceUrl", Sink: Template("resourceUrlBinding")},
		},
	},
	{
		Context: models.ContextCSS,
		Descriptors: []DescriptorDef{
			{ID: "DomStyleBlock", Name: "style.textContent = payload", Quality: questionable, Sink: DOM("styleBlock"),
				Description: "No script runs, but attacker CSS can still restyle or exfiltrate the page."},
			{ID: "DomStyleAttribute", Name: `element.setAttribute("style", payload)`, Quality: questionable, Sink: DOM("styleAttribute")},
			{ID: "HtmlSourceStyleBlock", Name: "<style>{payload}</style>", Quality: insecure, Sink: Source("styleElement"),
				Description: "A closing style tag in the payload ends the block."},
			{ID: "TemplateStyleBinding", Name: `style="{{.Value}}"`, Quality: recommended, Sink: Template("styleBinding"),
				Description: "Unsafe CSS values are replaced by the template engine."},
			{ID: "TemplateStyleTrusted", Name: "style binding of trusted CSS", Quality: questionable, Processor: "trustStyle", Sink: Template("styleBinding")},
		},
	},
	{
		Context: models.ContextJavaScript,
		Descriptors: []DescriptorDef{
			{ID: "DomScriptBlockRaw", Name: "script.textContent = payload", Quality: insecure, Sink: DOM("scriptBlock"),
				Description: "A constructed script element runs when attached."},
			{ID: "DomScriptBlockJson", Name: "script.textContent = JSON.stringify(payload)", Quality: recommended, Processor: "jsStringify", Sink: DOM("scriptBlock"),
				Description: "A JSON string literal with <, > and & escaped."},
			{ID: "DomScriptBlockDoubleQuoted", Name: `script.textContent = "\"" + payload + "\""`, Quality: insecure, Processor: "jsDoubleQuote", Sink: DOM("scriptBlock")},
			{ID: "DomScriptBlockSingleQuoted", Name: `script.textContent = "'" + payload + "'"`, Quality: insecure, Processor: "jsSingleQuote", Sink: DOM("scriptBlock")},
			{ID: "DomScriptBlockInnerHtml", Name: `element.innerHTML = "<script>" + payload + "</script>"`, Quality: insecure, Sink: DOM("scriptBlockInnerHtml"),
				Description: "The script itself never runs, but closing it lets markup through."},
			{ID: "JQueryScriptBlock", Name: `$("<script>").text(payload).appendTo(element)`, Quality: insecure, Sink: Library("jqScriptBlock")},
			{ID: "DomJsonParsed", Name: "element.textContent = JSON.parse(payload)", Quality: recommended, Processor: "jsonParse", Sink: DOM("textContent"),
				Description: "Parsed data is shown as text; invalid JSON becomes {}."},
		},
	},
	{
		Context: models.ContextChallenges,
		Descriptors: []DescriptorDef{
			{ID: "ChallengeStripTags", Name: "Strip dangerous tags once", Quality: insecure, Processor: "challengeStripTags", Sink: DOM("innerHtml"),
				Description: "Tags are removed in a single pass."},
			{ID: "ChallengeNoParentheses", Name: "No parentheses allowed", Quality: insecure, Processor: "challengeNoParentheses", Sink: DOM("innerHtml"),
				Description: "Parentheses are removed from the payload."},
			{ID: "ChallengeTemplateLiteral", Name: "Inside a template literal", Quality: insecure, Processor: "challengeTemplateLiteral", Sink: DOM("scriptBlock"),
				Description: "Backticks are escaped before the payload is placed in a template literal."},
			{ID: "ChallengeDoubleQuoteEscape", Name: "Escaped double quotes", Quality: insecure, Processor: "challengeEscapeQuotes", Sink: DOM("scriptBlock"),
				Description: "Double quotes are escaped but backslashes are not."},
			{ID: "ChallengeSanitizeReinsert", Name: "Sanitize, then reinsert the text", Quality: insecure, Sink: DOM("challengeSanitizeReinsert"),
				Description: "The sanitized output is read back through innerText and parsed again."},
			{ID: "ChallengeTextRoundTrip", Name: "Encode, then bold the text", Quality: insecure, Processor: "htmlEncode", Sink: DOM("challengeTextRoundTrip"),
				Description: "Encoded output is read back through innerText and wrapped in markup."},
		},
	},
}
