package tools

// Options select which tools RegisterAll installs.
type Options struct {
	// Backend names the Photoshop backend in session info.
	Backend string
	// AllowScripts registers run_script.
	AllowScripts bool
}

// RegisterAll installs every tool into r.
func RegisterAll(r *Registry, opts Options) error {
	var all []Tool
	all = append(all, documentTools()...)
	all = append(all, layerTools()...)
	all = append(all, imageTools()...)
	all = append(all, exportTools()...)
	all = append(all, convertTools()...)
	all = append(all, selectionTools()...)
	all = append(all, sessionTools(opts.Backend)...)
	if opts.AllowScripts {
		all = append(all, scriptTool())
	}
	for _, t := range all {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
