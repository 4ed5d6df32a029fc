package diagram

// Command names handled by this package.
const (
	CmdShapeCreate         = "shape.create"
	CmdShapeDelete         = "shape.delete"
	CmdShapeMove           = "shape.move"
	CmdShapeResize         = "shape.resize"
	CmdConnectionCreate    = "connection.create"
	CmdConnectionDelete    = "connection.delete"
	CmdConnectionReconnect = "connection.reconnect"
	CmdConnectionLayout    = "connection.layout"
	CmdLabelCreate         = "label.create"
	CmdLabelDelete         = "label.delete"
	CmdLabelMove           = "label.move"
	CmdUpdateLabel         = "element.updateLabel"
)
