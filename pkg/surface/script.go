package surface

import (
	"fmt"

	"github.com/AmeRaino/dompick/pkg/domtree"
)

// BindingName is the page-side function the capture script calls to deliver
// events. The browser implementation registers it before rendering.
const BindingName = "dompickEmit"

// CaptureScript wires the rendered document for inspection. It reports hover
// and click targets by their traceable id, forwards scroll and resize so
// highlights can be repositioned, and pings "ready" once listeners are
// attached. Click capture and the crosshair cursor are active only while
// inspect mode is on; interact mode lets the page behave normally.
//
// The script runs again after every content replacement. Document listeners
// die with the replaced document and are re-attached; window listeners
// survive and are guarded against double attachment. The attribute name must
// match the one the tree builder injects.
const CaptureScript = `
(function() {
    'use strict';

    if (window.__dompickInspect === undefined) {
        window.__dompickInspect = true;
    }

    function emit(payload) {
        if (typeof window.dompickEmit === 'function') {
            window.dompickEmit(JSON.stringify(payload));
        }
    }

    function idOf(target) {
        if (!target || typeof target.closest !== 'function') { return ''; }
        var el = target.closest('[data-dompick-id]');
        return el ? (el.getAttribute('data-dompick-id') || '') : '';
    }

    if (!document.__dompickWired) {
        document.__dompickWired = true;

        document.addEventListener('mouseover', function(e) {
            if (!window.__dompickInspect) { return; }
            emit({ event: 'hover', id: idOf(e.target) });
        }, true);

        document.addEventListener('click', function(e) {
            if (!window.__dompickInspect) { return; }
            e.preventDefault();
            e.stopPropagation();
            emit({ event: 'select', id: idOf(e.target) });
        }, true);
    }

    if (!window.__dompickWired) {
        window.__dompickWired = true;

        window.addEventListener('scroll', function() {
            emit({ event: 'scroll' });
        }, { capture: true, passive: true });

        window.addEventListener('resize', function() {
            emit({ event: 'resize' });
        }, { passive: true });
    }

    var cursor = document.getElementById('__dompick-cursor');
    if (!cursor) {
        cursor = document.createElement('style');
        cursor.id = '__dompick-cursor';
        cursor.textContent = '[data-dompick-id] { cursor: crosshair !important; }';
    }

    window.__dompickSetInspect = function(on) {
        window.__dompickInspect = !!on;
        if (on) {
            if (!cursor.parentNode && document.head) { document.head.appendChild(cursor); }
        } else if (cursor.parentNode) {
            cursor.parentNode.removeChild(cursor);
        }
    };
    window.__dompickSetInspect(window.__dompickInspect);

    emit({ event: 'ready' });
})();
`

// elementQuery returns the querySelector expression for a traceable id.
// Ids follow the path grammar (letters, digits, dashes) so quoting via %q
// is always valid JavaScript.
func elementQuery(id string) string {
	return fmt.Sprintf(`document.querySelector('[%s=%q]')`, domtree.IDAttr, id)
}

// boundingBoxJS evaluates to the element's viewport rectangle, or null when
// the id no longer resolves.
func boundingBoxJS(id string) string {
	return fmt.Sprintf(`
(function() {
    var el = %s;
    if (!el) { return null; }
    var r = el.getBoundingClientRect();
    return { x: r.x, y: r.y, width: r.width, height: r.height };
})()`, elementQuery(id))
}

// highlightColors maps a kind to its border and fill. Distinct per kind so
// the two rectangles are never confusable.
func highlightColors(kind HighlightKind) (border, fill string) {
	if kind == HighlightHover {
		return "2px dashed #f59e0b", "rgba(245, 158, 11, 0.08)"
	}
	return "2px solid #2563eb", "rgba(37, 99, 235, 0.10)"
}

func highlightElementID(kind HighlightKind) string {
	return "__dompick-hl-" + kind.String()
}

// drawHighlightJS positions the highlight rectangle of the given kind over
// the element, creating it on first use. A missing element hides the
// rectangle instead of erroring. Evaluates to true when drawn.
func drawHighlightJS(id string, kind HighlightKind) string {
	border, fill := highlightColors(kind)
	return fmt.Sprintf(`
(function() {
    var box = document.getElementById(%q);
    var el = %s;
    if (!el) {
        if (box) { box.style.display = 'none'; }
        return false;
    }
    if (!box) {
        box = document.createElement('div');
        box.id = %q;
        box.style.position = 'fixed';
        box.style.pointerEvents = 'none';
        box.style.zIndex = '2147483646';
        box.style.border = %q;
        box.style.background = %q;
        box.style.boxSizing = 'border-box';
        document.body.appendChild(box);
    }
    var r = el.getBoundingClientRect();
    box.style.display = 'block';
    box.style.left = r.left + 'px';
    box.style.top = r.top + 'px';
    box.style.width = r.width + 'px';
    box.style.height = r.height + 'px';
    return true;
})()`, highlightElementID(kind), elementQuery(id), highlightElementID(kind), border, fill)
}

// clearHighlightJS hides the highlight rectangle of the given kind.
func clearHighlightJS(kind HighlightKind) string {
	return fmt.Sprintf(`
(function() {
    var box = document.getElementById(%q);
    if (box) { box.style.display = 'none'; }
    return true;
})()`, highlightElementID(kind))
}

// setInspectJS toggles capture and the crosshair cursor on the page.
func setInspectJS(on bool) string {
	return fmt.Sprintf(`
(function() {
    if (typeof window.__dompickSetInspect === 'function') {
        window.__dompickSetInspect(%t);
    } else {
        window.__dompickInspect = %t;
    }
    return true;
})()`, on, on)
}
