package preview

// navScript intercepts clicks on relative, non-anchor hyperlinks and turns
// them into navigate messages to the host, so a multi-page site can be
// browsed inside a single preview surface without losing editor context.
// The avallon- id keeps it out of every persisted document.
const navScript = `<script id="avallon-nav-rewrite">
(function() {
  document.addEventListener('click', function(e) {
    // When the visual editor is active it owns clicks: selecting a link to
    // edit it must not also navigate away.
    if (window.__avallonEditor) return;
    var a = e.target && e.target.closest ? e.target.closest('a') : null;
    if (!a) return;
    var href = a.getAttribute('href');
    if (!href) return;
    if (href.indexOf('http') === 0 || href.charAt(0) === '#' ||
        href.indexOf('javascript:') === 0 || href.indexOf('mailto:') === 0) {
      return;
    }
    e.preventDefault();
    e.stopPropagation();
    var page = href.replace(/^\.\//, '').replace(/^\//, '');
    if (!/\.html$/.test(page)) page += '.html';
    window.parent.postMessage({ type: 'navigate', page: page }, '*');
  }, true);
})();
</script>
`

// navVisibleCSS defeats responsive rules that would hide navigation menus at
// the iframe's rendered width while editing.
const navVisibleCSS = `<style id="avallon-nav-visible">
nav, header nav, .nav, .nav-menu, .nav-links, .navbar-menu {
  display: flex !important;
  visibility: visible !important;
  opacity: 1 !important;
}
.hamburger, .menu-toggle, .mobile-menu-button, .burger {
  display: none !important;
}
</style>
`
