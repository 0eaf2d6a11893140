package sanitize

import "strings"

// fallbackScript installs a global onerror fallback on every <img>, present
// and future, cycling through known-good image IDs before giving up and
// hiding the image.
const fallbackScript = `<script id="avallon-img-fallback">
(function() {
  var FALLBACKS = [
    'photo-1522071820081-009f0129c71c',
    'photo-1497366216548-37526070297c',
    'photo-1486312338219-ce68d2c6f44d',
    'photo-1460925895917-afdab827c52f',
    'photo-1504384308090-c894fdcc538d'
  ];
  var MAX_ATTEMPTS = 5;

  function attach(img) {
    if (img.__avallonFallback) return;
    img.__avallonFallback = true;
    var attempts = 0;
    img.addEventListener('error', function() {
      if (attempts >= MAX_ATTEMPTS) {
        img.style.display = 'none';
        return;
      }
      var id = FALLBACKS[attempts % FALLBACKS.length];
      attempts++;
      img.src = 'https://images.unsplash.com/' + id + '?w=800&h=600&fit=crop';
    });
  }

  Array.prototype.forEach.call(document.querySelectorAll('img'), attach);

  new MutationObserver(function(mutations) {
    mutations.forEach(function(m) {
      Array.prototype.forEach.call(m.addedNodes, function(node) {
        if (node.nodeType !== 1) return;
        if (node.tagName === 'IMG') attach(node);
        if (node.querySelectorAll) {
          Array.prototype.forEach.call(node.querySelectorAll('img'), attach);
        }
      });
    });
  }).observe(document.documentElement, { childList: true, subtree: true });
})();
</script>
`

// InjectImageFallback appends the runtime image fallback handler before the
// document's closing tag. Documents without a closing </body> or </html>
// tag are returned unchanged.
func InjectImageFallback(html string) string {
	lower := strings.ToLower(html)
	if !strings.Contains(lower, "</body>") && !strings.Contains(lower, "</html>") {
		return html
	}
	if strings.Contains(html, `id="avallon-img-fallback"`) {
		return html
	}
	return InjectBeforeClose(html, fallbackScript)
}
