package metal_bridge

// MetalKernelSource is the MSL for DefaultKernels. Kernel names carry the
// element type as a suffix (_f32, _i32). Element-wise kernels expect a grid
// of exactly one thread per element; binary kernels bind a, b and out at
// buffer indices 0-2, unary kernels bind in and out at 0-1.
const MetalKernelSource = `
#include <metal_stdlib>
using namespace metal;

#define BINARY_KERNEL(NAME, T, EXPR)                          \
kernel void NAME(device const T *a   [[buffer(0)]],          \
                 device const T *b   [[buffer(1)]],          \
                 device T       *out [[buffer(2)]],          \
                 uint i [[thread_position_in_grid]]) {       \
    T x = a[i];                                               \
    T y = b[i];                                               \
    out[i] = (EXPR);                                          \
}

#define UNARY_KERNEL(NAME, T, EXPR)                           \
kernel void NAME(device const T *in  [[buffer(0)]],          \
                 device T       *out [[buffer(1)]],          \
                 uint i [[thread_position_in_grid]]) {       \
    T x = in[i];                                              \
    out[i] = (EXPR);                                          \
}

BINARY_KERNEL(vadd_f32, float, x + y)
BINARY_KERNEL(vadd_i32, int,   x + y)
BINARY_KERNEL(vmul_f32, float, x * y)
BINARY_KERNEL(vmul_i32, int,   x * y)

UNARY_KERNEL(relu_f32,    float, max(x, 0.0f))
UNARY_KERNEL(relu_i32,    int,   max(x, 0))
UNARY_KERNEL(sigmoid_f32, float, 1.0f / (1.0f + exp(-x)))

// dims = (M, N, P): out is M×P, a is M×N, b is N×P, all row-major. The grid
// is (P, M) and may overhang the matrix.
kernel void matmul_f32(device const float *a    [[buffer(0)]],
                       device const float *b    [[buffer(1)]],
                       device float       *out  [[buffer(2)]],
                       constant packed_uint3 &dims [[buffer(3)]],
                       uint2 pos [[thread_position_in_grid]]) {
    const uint m = dims[0], n = dims[1], p = dims[2];
    if (pos.y >= m || pos.x >= p) {
        return;
    }
    device const float *row = a + pos.y * n;
    float acc = 0.0f;
    for (uint k = 0; k < n; ++k) {
        acc = fma(row[k], b[k * p + pos.x], acc);
    }
    out[pos.y * p + pos.x] = acc;
}
`
