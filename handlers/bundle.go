package handlers

// HandlerBundle groups the endpoint handlers served by the router.
type HandlerBundle struct {
	Wizard  *WizardHandler
	Address *AddressHandler
}
