package version

const VERSION = "v0.3.0"

const UPDATE_MESSAGE = "v0.3.0 adds the hand wave pulse and the websocket bridge."
