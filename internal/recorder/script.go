package recorder

import (
	"encoding/json"
	"fmt"
	"time"
)

// captureScript queues every recordable DOM event together with a snapshot
// of the document in which the event target, and any ancestor carrying an
// onclick handler, is marked. The recorder drains the queue by polling.
const captureScript = `
(function() {
	if (window.__uirRecorder) return;

	var TARGET = 'data-uir-target';
	var CLICK = 'data-uir-click';
	var KEYS = ['Enter', 'Tab', 'Escape', 'Delete', 'Backspace'];

	var recorder = window.__uirRecorder = {
		queue: [],
		drain: function() {
			var out = this.queue;
			this.queue = [];
			return out;
		}
	};

	function snapshot(target) {
		var marked = [];
		var el = target;
		for (var depth = 0; el && el.nodeType === 1 && depth <= 10; depth++) {
			if (typeof el.onclick === 'function') {
				el.setAttribute(CLICK, '1');
				marked.push(el);
			}
			el = el.parentElement;
		}
		target.setAttribute(TARGET, '1');
		try {
			return document.documentElement.outerHTML;
		} finally {
			target.removeAttribute(TARGET);
			marked.forEach(function(m) { m.removeAttribute(CLICK); });
		}
	}

	function push(kind, event, extra) {
		var target = event.target;
		if (target && target.nodeType !== 1) target = target.parentElement;
		if (!target || !target.setAttribute) return;
		var ev = { kind: kind, html: snapshot(target), url: location.href, ts: Date.now() };
		for (var k in extra) ev[k] = extra[k];
		recorder.queue.push(ev);
	}

	document.addEventListener('click', function(e) {
		var t = e.target;
		push('click', e, t && t.type === 'checkbox' ? { checked: t.checked } : {});
	}, true);

	document.addEventListener('dblclick', function(e) { push('dblclick', e, {}); }, true);
	document.addEventListener('contextmenu', function(e) { push('contextmenu', e, {}); }, true);
	document.addEventListener('submit', function(e) { push('submit', e, {}); }, true);

	document.addEventListener('input', function(e) {
		push('input', e, { value: e.target.value || '' });
	}, true);

	document.addEventListener('change', function(e) {
		var t = e.target;
		var extra = { value: t.value || '' };
		if (t.type === 'checkbox' || t.type === 'radio') {
			extra.checked = t.checked;
		} else if (t.tagName === 'SELECT') {
			var opt = t.options[t.selectedIndex];
			extra.selectedText = opt ? opt.text : '';
		}
		push('change', e, extra);
	}, true);

	document.addEventListener('keydown', function(e) {
		if (KEYS.indexOf(e.key) === -1) return;
		push('keydown', e, { key: e.key, ctrl: e.ctrlKey, shift: e.shiftKey, alt: e.altKey });
	}, true);
})();
`

const drainExpression = `window.__uirRecorder ? window.__uirRecorder.drain() : []`

const highlightID = "uir-highlight"

// HighlightDuration is how long the overlay stays on the page.
const HighlightDuration = 3 * time.Second

const highlightTemplate = `
(function(xpath) {
	try {
		var el = document.evaluate(xpath, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el || !el.getBoundingClientRect) return false;

		var old = document.getElementById('%[1]s');
		if (old) old.remove();

		el.scrollIntoView({ block: 'center' });
		var rect = el.getBoundingClientRect();
		var box = document.createElement('div');
		box.id = '%[1]s';
		box.style.cssText = 'position:fixed;pointer-events:none;z-index:2147483647;' +
			'border:3px dashed #e53935;background:rgba(229,57,53,0.1);' +
			'top:' + rect.top + 'px;left:' + rect.left + 'px;' +
			'width:' + rect.width + 'px;height:' + rect.height + 'px;';
		document.body.appendChild(box);
		setTimeout(function() { box.remove(); }, %[2]d);
		return true;
	} catch (e) {
		return false;
	}
})(%[3]s)
`

// highlightScript evaluates to true when locator matches an element in the
// page, outlining that element for HighlightDuration.
func highlightScript(locator string) string {
	arg, _ := json.Marshal(locator)
	return fmt.Sprintf(highlightTemplate, highlightID, HighlightDuration.Milliseconds(), arg)
}
