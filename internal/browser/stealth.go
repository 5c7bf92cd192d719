package browser

// stealthScript runs before any page script and hides the usual automation
// markers headless Chrome exposes.
const stealthScript = `(() => {
	Object.defineProperty(navigator, 'webdriver', {get: () => undefined, configurable: true});
	Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5], configurable: true});
	Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en'], configurable: true});
	if (!window.chrome) {
		window.chrome = {runtime: {}};
	}
	const query = window.navigator.permissions && window.navigator.permissions.query;
	if (query) {
		window.navigator.permissions.query = (parameters) => (
			parameters.name === 'notifications'
				? Promise.resolve({state: Notification.permission})
				: query(parameters)
		);
	}
})();`
