package config

// Validate runs the configuration checks that must pass before any graph
// output is written: every declared dependency resolves to a package, every
// firmware image maps onto a declared package, the dependency relation is
// acyclic, and every relinked image has a linker-script template.
func Validate(p *Project) error {
	for _, name := range p.PackageNames() {
		pkg := p.Packages[name]
		for _, dep := range pkg.Deps {
			if _, ok := p.Packages[dep]; !ok {
				return newConfigError(ErrCodeDanglingDep, name,
					"dependency %q does not resolve to a declared package", dep)
			}
			if dep == name {
				return newConfigError(ErrCodeCycle, name, "package depends on itself")
			}
		}
	}

	for _, img := range p.AllImages() {
		if _, ok := p.Packages[img.PackageName()]; !ok {
			return newConfigError(ErrCodeBadImage, img.Name,
				"image package %q is not a declared package", img.PackageName())
		}
	}

	if cycle := findDependencyCycle(p); cycle != nil {
		return cycleError(cycle)
	}

	// The kernel is always relinked (the fixup edge consumes its relinked
	// image) and every application's metadata edge consumes its relinked
	// image, so both need a linker-script template. Only the idle image may
	// ship its original link output.
	if p.Firmware.Kernel.Template == "" {
		return newConfigError(ErrCodeNoTemplate, p.Firmware.Kernel.Name,
			"kernel image requires a linker-script template")
	}
	for _, app := range p.Firmware.Apps {
		if app.Template == "" {
			return newConfigError(ErrCodeNoTemplate, app.Name,
				"application image requires a linker-script template")
		}
	}
	return nil
}
