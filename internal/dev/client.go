package dev

import (
	"net/http"
	"strconv"
	"strings"
)

// ClientScriptPath is where the dev server serves the reload client.
const ClientScriptPath = "/_hyper/client.js"

// clientScript reloads the page after a build and shows build errors in
// an overlay. RELOAD_PATH is replaced with the websocket endpoint.
const clientScript = `(function() {
    'use strict';

    var delay = 1000;
    var maxDelay = 30000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + RELOAD_PATH);

        ws.onopen = function() {
            delay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            switch (msg.type) {
                case 'build':
                    location.reload();
                    break;
                case 'error':
                    showErrors(msg.errors || []);
                    break;
                case 'clear':
                    clearErrors();
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, maxDelay);
                connect();
            }, delay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function showErrors(errors) {
        clearErrors();
        var overlay = document.createElement('div');
        overlay.id = 'hyperc-errors';
        overlay.style.cssText = 'position:fixed;inset:0;background:rgba(0,0,0,0.9);color:#fff;font:14px monospace;padding:20px;overflow:auto;z-index:999999;';
        errors.forEach(function(d) {
            var pre = document.createElement('pre');
            pre.style.cssText = 'white-space:pre-wrap;background:#1a1a1a;padding:16px;border-left:4px solid #ff5555;';
            var where = d.location ? d.location.file + ':' + d.location.line + ':' + d.location.column + '\n' : '';
            pre.textContent = where + (d.code ? d.code + ': ' : '') + d.message + (d.suggestion ? '\n\nHint: ' + d.suggestion : '');
            overlay.appendChild(pre);
        });
        document.body.appendChild(overlay);
    }

    function clearErrors() {
        var overlay = document.getElementById('hyperc-errors');
        if (overlay) {
            overlay.remove();
        }
    }

    connect();
})();
`

// clientScriptHandler serves the reload client for a reload endpoint.
func clientScriptHandler(reloadPath string) http.HandlerFunc {
	script := strings.Replace(clientScript, "RELOAD_PATH", strconv.Quote(reloadPath), 1)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte(script))
	}
}
