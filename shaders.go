package main

// builtinSpectrumLength is the array size u_data_arr is declared with in
// defaultVertexShader.
const builtinSpectrumLength = 64

// Built-in plane shaders. The vertex shader lifts each grid point by the
// spectrum values at its |x| and |y| offsets from the centre.
const (
	defaultVertexShader = `
    attribute vec3 position;
    uniform mat4 projectionMatrix;
    uniform mat4 modelViewMatrix;
    uniform float time;
    uniform float u_data_arr[64];
    varying float x;
    varying float y;
    varying float z;

    float spectrumAt(float offset) {
      int i = int(min(floor(offset + 0.5), 63.0));
      return u_data_arr[i];
    }

    void main(void) {
      x = abs(position.x);
      y = abs(position.y);
      z = sin(spectrumAt(x) / 50.0 + spectrumAt(y) / 50.0) * 3.0;
      gl_Position = projectionMatrix * modelViewMatrix * vec4(position.x, position.y, z, 1.0);
    }`
	defaultFragmentShader = `
    precision mediump float;
    uniform float time;
    varying float x;
    varying float y;
    varying float z;

    void main(void) {
      gl_FragColor = vec4((32.0 - abs(x)) / 32.0, (32.0 - abs(y)) / 32.0, (abs(x + y) / 2.0) / 32.0, 1.0);
    }`
)
